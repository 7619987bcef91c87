// cmd/tools/model-inspector/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"insurance-predictor/internal/models"
	"insurance-predictor/internal/pipeline"
	"insurance-predictor/internal/prediction"
	"insurance-predictor/pkg/modelformat"
)

const defaultModelPath = "models/insurance_random_forest.json"

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultModelPath, "Path to model artifact")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return validateArtifact(*path, out)

	case "describe":
		fs := flag.NewFlagSet("describe", flag.ContinueOnError)
		path := fs.String("path", defaultModelPath, "Path to model artifact")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return describeArtifact(*path, out)

	case "predict":
		fs := flag.NewFlagSet("predict", flag.ContinueOnError)
		path := fs.String("path", defaultModelPath, "Path to model artifact")
		body := fs.String("json", "", "Applicant as JSON; overrides the individual flags")
		age := fs.Int("age", 30, "Age in years")
		sex := fs.String("sex", "male", "Sex (male, female)")
		bmi := fs.Float64("bmi", 25.0, "Body-mass index")
		children := fs.Int("children", 0, "Number of dependents")
		smoker := fs.String("smoker", "no", "Smoker (yes, no)")
		region := fs.String("region", "northeast", "Region (northeast, northwest, southeast, southwest)")
		if err := fs.Parse(args); err != nil {
			return err
		}

		applicant := models.ApplicantRecord{
			Age:      *age,
			Sex:      *sex,
			BMI:      *bmi,
			Children: *children,
			Smoker:   *smoker,
			Region:   *region,
		}
		if *body != "" {
			decoded, err := models.DecodeApplicant([]byte(*body))
			if err != nil {
				return err
			}
			applicant = decoded
		}
		return predictApplicant(*path, applicant, out)

	case "stamp":
		fs := flag.NewFlagSet("stamp", flag.ContinueOnError)
		path := fs.String("path", defaultModelPath, "Path to model artifact")
		name := fs.String("name", "", "New artifact name (unchanged when empty)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return stampArtifact(*path, *name, time.Now().UTC(), out)

	case "help":
		help(out)
		return nil

	default:
		help(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func validateArtifact(path string, out io.Writer) error {
	if _, err := pipeline.Load(path); err != nil {
		return fmt.Errorf("model validation failed: %w", err)
	}
	fmt.Fprintln(out, "Model validation passed.")
	return nil
}

func describeArtifact(path string, out io.Writer) error {
	artifact, err := modelformat.Load(path)
	if err != nil {
		return err
	}
	p, err := pipeline.FromArtifact(artifact)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Name:           %s\n", p.Name())
	fmt.Fprintf(out, "Target:         %s\n", p.Target())
	fmt.Fprintf(out, "Format version: %d\n", artifact.FormatVersion)
	if artifact.CreatedAt != nil {
		fmt.Fprintf(out, "Created at:     %s\n", artifact.CreatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Transformer:    %s\n", artifact.Transformer)
	fmt.Fprintf(out, "Estimator:      %s (%d trees)\n", p.EstimatorKind(), p.NumTrees())
	fmt.Fprintf(out, "Inputs:         %s\n", strings.Join(p.FeatureNamesIn(), ", "))
	fmt.Fprintf(out, "Encoded (%d):\n", len(p.EncodedFeatureNames()))
	for i, name := range p.EncodedFeatureNames() {
		fmt.Fprintf(out, "  %2d  %s\n", i, name)
	}
	return nil
}

func predictApplicant(path string, applicant models.ApplicantRecord, out io.Writer) error {
	p, err := pipeline.Load(path)
	if err != nil {
		return err
	}

	svc, err := prediction.NewService(p, prediction.Config{}, nil, nil, nil)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	result, err := svc.Predict(context.Background(), applicant)
	if err != nil {
		return enc.Encode(models.FailureResponse{Error: err.Error(), Status: models.StatusFailed})
	}
	return enc.Encode(models.PredictionResponse{ChargesPredites: result.Charges, Status: models.StatusSuccess})
}

func stampArtifact(path, name string, now time.Time, out io.Writer) error {
	artifact, err := modelformat.Load(path)
	if err != nil {
		return err
	}
	if name != "" {
		artifact.Name = name
	}
	artifact.CreatedAt = &now

	if err := modelformat.Save(path, artifact); err != nil {
		return err
	}
	fmt.Fprintf(out, "Stamped %s (%s) at %s\n", path, artifact.Name, now.Format(time.RFC3339))
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Usage: model-inspector <command> [options]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  validate   Load the artifact and check its structure")
	fmt.Fprintln(out, "             --path <file>")
	fmt.Fprintln(out, "  describe   Print the artifact's metadata and encoded feature layout")
	fmt.Fprintln(out, "             --path <file>")
	fmt.Fprintln(out, "  predict    Run one applicant through the model")
	fmt.Fprintln(out, "             --path <file> [--json <body>] [--age --sex --bmi --children --smoker --region]")
	fmt.Fprintln(out, "  stamp      Set created_at (and optionally the name) and rewrite the artifact")
	fmt.Fprintln(out, "             --path <file> [--name <name>]")
	fmt.Fprintln(out, "  help       Show this help message")
}
