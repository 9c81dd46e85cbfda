package dicomslice

import (
	"runtime"
	"sync"

	"dicommpr/internal/models"
)

// Input is one candidate source file handed to the extractor: its content and
// the relative path it was read from.
type Input struct {
	Path string
	Data []byte
}

// FileError records the failure of a single input file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// ExtractAll parses every input concurrently using the given number of
// workers (0 means one per CPU). Extraction of each slice is independent, so
// the work is fanned out to a worker pool and collected when all inputs are
// done.
//
// Records are returned in input order with failed inputs removed, so a
// downstream resolver that falls back to input order stays deterministic.
// Failures are collected per file rather than aborting the set; one corrupt
// file must not take down an otherwise valid session.
func ExtractAll(inputs []Input, workers int) ([]*models.SliceRecord, []FileError) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	type result struct {
		rec *models.SliceRecord
		err error
	}
	results := make([]result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := Parse(inputs[i].Data, inputs[i].Path)
				results[i] = result{rec: rec, err: err}
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	records := make([]*models.SliceRecord, 0, len(inputs))
	var failures []FileError
	for i, res := range results {
		if res.err != nil {
			failures = append(failures, FileError{Path: inputs[i].Path, Err: res.err})
			continue
		}
		records = append(records, res.rec)
	}
	return records, failures
}
