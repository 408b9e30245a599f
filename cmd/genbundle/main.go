// Command genbundle writes a starter artifact bundle for local
// development: a full applicant schema, feature manifest, synthetic
// logistic coefficients, thresholds, and an explainer baseline.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ahrav/go-underwrite/internal/application"
	"github.com/ahrav/go-underwrite/internal/testutils"
)

func main() {
	var (
		outputPath = flag.String("output", "artifacts/bundle.yaml", "Output file path")
		force      = flag.Bool("force", false, "Overwrite an existing bundle")
	)
	flag.Parse()

	if !*force {
		if _, err := os.Stat(*outputPath); err == nil {
			log.Fatalf("Refusing to overwrite %s (use -force)", *outputPath)
		}
	}

	data := testutils.StarterBundleYAML()

	// Round-trip through the loader so a generated bundle is always one
	// the service will accept.
	loader, err := application.NewBundleLoader()
	if err != nil {
		log.Fatalf("Failed to create bundle loader: %v", err)
	}
	bundle, err := loader.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		log.Fatalf("Generated bundle failed validation: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*outputPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write bundle: %v", err)
	}

	fmt.Printf("Generated starter bundle:\n")
	fmt.Printf("- Path: %s\n", *outputPath)
	fmt.Printf("- Model: %s %s\n", bundle.Model.Name, bundle.Model.Version)
	fmt.Printf("- Raw fields: %d\n", bundle.Schema.Len())
	fmt.Printf("- Features: %d\n", bundle.Manifest.Count())
	fmt.Printf("- Thresholds: approve=%.2f conditional=%.2f\n",
		bundle.Thresholds.Approve, bundle.Thresholds.Conditional)
	fmt.Printf("- Explainable: %t\n", bundle.ExplainAvailable())
	fmt.Printf("\nNOTE: the coefficients are synthetic. Replace them with a trained\n")
	fmt.Printf("artifact before serving real decisions.\n")
}
