package volume

import (
	"fmt"

	"dicommpr/internal/models"
	"dicommpr/pkg/dicomslice"
	"dicommpr/pkg/intensity"
	"dicommpr/pkg/ordering"
)

// BuildOptions configure a volume build.
type BuildOptions struct {
	// Workers bounds the extraction fan-out; 0 means one per CPU
	Workers int

	// Normalize, when non-nil, bakes a fixed window into the volume
	// instead of keeping raw physical intensities
	Normalize *intensity.Options
}

// Report is the partial-success account of one build: which files were
// skipped and why, and the advisory flags the caller should surface.
type Report struct {
	Extracted int
	Skipped   int
	Failures  []dicomslice.FileError

	OrderConfidence  models.OrderConfidence
	SpacingDefaulted bool
}

// Result is a successful build.
type Result struct {
	Volume  *models.Volume
	Summary *Summary
	Report  Report
}

// Build runs the full pipeline: parallel slice extraction, ordering
// resolution, assembly and summary derivation.
//
// Per-file extraction failures are collected into the report and the build
// proceeds with the readable remainder. The build itself fails only on
// set-level errors: every file unreadable (models.ErrEmptyInput wrapped with
// the per-file reasons) or inconsistent slice geometry. A failed build
// produces no partial volume.
func Build(inputs []dicomslice.Input, opts BuildOptions) (*Result, error) {
	if len(inputs) == 0 {
		return nil, models.ErrEmptyInput
	}

	records, failures := dicomslice.ExtractAll(inputs, opts.Workers)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: none of the %d files were readable slices (first: %v)",
			models.ErrEmptyInput, len(inputs), failures[0])
	}

	ord := ordering.Resolve(records)

	var vol *models.Volume
	var err error
	if opts.Normalize != nil {
		vol, err = AssembleNormalized(records, ord, *opts.Normalize)
	} else {
		vol, err = Assemble(records, ord)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Volume:  vol,
		Summary: Summarize(vol, records),
		Report: Report{
			Extracted:        len(records),
			Skipped:          len(failures),
			Failures:         failures,
			OrderConfidence:  ord.Confidence,
			SpacingDefaulted: vol.SpacingDefaulted,
		},
	}, nil
}
