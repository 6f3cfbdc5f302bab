package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/claimlens/estimates_backend/config"
	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
	"bitbucket.org/claimlens/estimates_backend/workflow"
)

func main() {
	filePath := flag.String("file", "", "Path to the estimate file (.txt or .xlsx).")
	lossType := flag.String("loss-type", "", "Optional loss type (WATER, FIRE, WIND, HAIL, COLLISION). Unrecognized values fall back to OTHER.")
	userInput := flag.String("user-input", "", "Optional accompanying free-form text (guardrail-scanned, not parsed).")
	pretty := flag.Bool("pretty", false, "Indent the JSON output.")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze-file -file <estimate.txt|estimate.xlsx> [-loss-type WATER] [-pretty]")
		os.Exit(2)
	}

	text, err := readEstimate(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *filePath, err)
		os.Exit(1)
	}

	pipeline := workflow.NewAnalysisPipeline(config.GetLogger(), config.ExtraGuardrailPhrases())
	result, rejection := pipeline.Run(context.Background(), models.AnalysisRequest{
		EstimateText: text,
		UserInput:    *userInput,
		LossType:     *lossType,
	})

	var payload any = result
	if rejection != nil {
		payload = rejection
	}
	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(payload); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
	if rejection != nil {
		os.Exit(1)
	}
}

func readEstimate(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return utils.FlattenXlsxToText(f)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
