package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"kspaceexplorer/internal/models"
	"kspaceexplorer/pkg/config"
	"kspaceexplorer/pkg/engine"
	"kspaceexplorer/pkg/imageio"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Grayscale input image (PNG, JPEG, GIF or TIFF)")
	configPath := flag.String("config", "kspaceexplorer.yaml", "YAML configuration file")
	outputDir := flag.String("output", "", "Output directory (default: config output.dir)")
	format := flag.String("format", "", "Output format, png or tiff (default: config output.format)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration file and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config file: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *format != "" {
		cfg.Output.Format = strings.ToLower(*format)
	}

	fmt.Println("================================")
	fmt.Println("K-SPACE EXPLORER")
	fmt.Println("MRI acquisition and reconstruction artifact simulation on 2D slices")
	fmt.Println("================================")

	// Load the input image into a float grid and build the slice
	fmt.Printf("Loading input image: %s\n", *inputPath)
	grid, err := imageio.LoadGray(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	fmt.Printf("Image size: %dx%d\n", grid.Rows, grid.Cols)

	slice, err := engine.NewSliceFromImage(grid)
	if err != nil {
		log.Fatalf("Failed to build slice: %v", err)
	}

	study, err := models.NewStudy(slice)
	if err != nil {
		log.Fatalf("Failed to build study: %v", err)
	}

	// Apply the configured filter pipeline
	opts := cfg.Options()
	fmt.Println("Applying filter pipeline...")
	if err := study.RecomputeAll(opts); err != nil {
		log.Fatalf("Recompute failed: %v", err)
	}

	shape := study.Current().Img.Shape()
	fmt.Printf("Resulting image size: %dx%d\n", shape.Rows, shape.Cols)

	// Save the image and k-space pair
	ext := ".png"
	if cfg.Output.Format == "tiff" {
		ext = ".tiff"
	}
	base := strings.TrimSuffix(filepath.Base(*inputPath), filepath.Ext(*inputPath))
	outPath := filepath.Join(cfg.Output.Dir, base+ext)

	if err := imageio.SavePair(study.Current(), outPath); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}

	fmt.Println("\nResults saved:")
	base = strings.TrimSuffix(outPath, ext)
	fmt.Printf("- Image:   %s_i%s\n", base, ext)
	fmt.Printf("- K-space: %s_k%s\n", base, ext)
}
