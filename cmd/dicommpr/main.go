package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"dicommpr/internal/models"
	"dicommpr/pkg/dicomslice"
	"dicommpr/pkg/ingest"
	"dicommpr/pkg/intensity"
	"dicommpr/pkg/view"
	"dicommpr/pkg/volume"
)

func main() {
	// Parse command line arguments
	input := flag.String("input", "", "ZIP archive or directory containing DICOM slices")
	outputDir := flag.String("output", "reconstructed_slices", "Directory to save extracted slice images")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of parallel extraction workers (default: all available CPUs)")
	axes := flag.String("axes", "native,coronal,sagittal", "Comma-separated axes to export")
	center := flag.Float64("center", 0, "Window center override (used when -width > 0)")
	width := flag.Float64("width", 0, "Window width override in intensity units")
	flag.Parse()

	// Validate inputs
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	var window *intensity.Window
	if *width > 0 {
		window = &intensity.Window{Center: *center, Width: *width}
	}

	inputs, err := loadInputs(*input)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	if len(inputs) == 0 {
		log.Fatalf("No DICOM candidates found in %s", *input)
	}

	fmt.Println("================================")
	fmt.Println("DICOM VOLUME ASSEMBLY AND MULTI-PLANAR RECONSTRUCTION")
	fmt.Println("================================")
	fmt.Printf("Found %d candidate files\n", len(inputs))

	startTime := time.Now()
	result, err := volume.Build(inputs, volume.BuildOptions{Workers: *workers})
	if err != nil {
		log.Fatalf("Volume build failed: %v", err)
	}
	buildTime := time.Since(startTime)

	printSummary(result, buildTime)

	for _, name := range strings.Split(*axes, ",") {
		axis, err := models.ParseAxis(strings.TrimSpace(name))
		if err != nil {
			log.Fatalf("Invalid axis %q: %v", name, err)
		}
		axisDir := filepath.Join(*outputDir, axis.String())
		fmt.Printf("Saving %s slices to: %s\n", axis, axisDir)
		if err := view.SaveSliceSequence(result.Volume, axis, window, axisDir); err != nil {
			log.Fatalf("Failed to save %s slices: %v", axis, err)
		}
	}
	fmt.Println("Slice extraction completed!")
}

// loadInputs reads candidate slices from a ZIP archive or a directory tree.
func loadInputs(path string) ([]dicomslice.Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ingest.FromDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.FromZip(f, info.Size())
}

func printSummary(result *volume.Result, buildTime time.Duration) {
	s := result.Summary

	fmt.Printf("\nVolume built in %.2f seconds\n", buildTime.Seconds())
	fmt.Printf("Patient: %s (%s)\n", s.PatientName, s.PatientID)
	fmt.Printf("Study date: %s, modality: %s\n", s.StudyDate, s.Modality)
	fmt.Printf("Dimensions: %d slices x %d rows x %d columns\n", s.NumSlices, s.Rows, s.Columns)
	fmt.Printf("Voxel spacing (mm): %.3f x %.3f x %.3f\n",
		s.VoxelSpacing.Z, s.VoxelSpacing.Y, s.VoxelSpacing.X)
	fmt.Printf("Intensity range: [%.1f, %.1f], mean %.1f\n", s.Stats.Min, s.Stats.Max, s.Stats.Mean)

	if result.Report.Skipped > 0 {
		fmt.Printf("Skipped %d unreadable files:\n", result.Report.Skipped)
		for _, failure := range result.Report.Failures {
			fmt.Printf("  - %v\n", failure)
		}
	}
	if s.OrderConfidence != models.OrderGeometric.String() {
		fmt.Printf("WARNING: slice order is %s; views may not be anatomically ordered\n", s.OrderConfidence)
	}
	if s.SpacingDefaulted {
		fmt.Println("WARNING: voxel spacing partly defaulted; aspect ratios are approximate")
	}
	fmt.Println()
}
