/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/valpere/pdftran/internal/creds"
	"github.com/valpere/pdftran/internal/detector"
	"github.com/valpere/pdftran/internal/extractor"
	"github.com/valpere/pdftran/internal/orchestrator"
	"github.com/valpere/pdftran/internal/store"
	"github.com/valpere/pdftran/internal/translator"
)

var (
	outputFile string
	sourceLang string
	targetLang string
	service    string
	configPath string

	maxSegmentBytes int
	concurrency     int
	maxRetries      int

	dbPath     string
	noCache    bool
	bestEffort bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <file.pdf>",
	Short: "Translate a PDF document to a text file",
	Long: `Extract the text of a PDF with pdftotext and translate it.

The text is split into segments that respect the API's request size
limit, translated with bounded concurrency, and reassembled in the
original order. The result is written next to the source PDF unless
--output is given.

Available services:
  - google      Translate v2 REST endpoint (default)
  - google-sdk  official Cloud Translation client

Example:
  pdftran translate paper.pdf -s en -t sv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdfPath := args[0]

		if _, err := language.Parse(targetLang); err != nil {
			return fmt.Errorf("invalid target language %q: %w", targetLang, err)
		}

		outPath := outputFile
		if outPath == "" {
			outPath = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".translated.txt"
		}
		if outPath == pdfPath {
			return fmt.Errorf("output file and input file cannot be the same")
		}

		credPath := configPath
		if credPath == "" {
			var err error
			credPath, err = creds.DefaultPath()
			if err != nil {
				return err
			}
		}

		credStore, err := creds.Open(credPath, creds.NewGcloudTokenSource())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		text, err := extractor.NewPoppler().Extract(ctx, pdfPath)
		if err != nil {
			return err
		}

		if sourceLang == "auto" {
			det := detector.New()
			if detected, ok := det.DetectISO(text); ok {
				sourceLang = detected
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
			} else {
				sourceLang = "en"
				fmt.Fprintf(os.Stderr, "Could not detect source language, defaulting to en\n")
			}
		}
		if sourceLang == targetLang {
			return fmt.Errorf("source and target language are both %q", targetLang)
		}

		var db *store.Store
		var cache orchestrator.Cache
		if !noCache && dbPath != "" {
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			cache = db
		}

		client, err := buildClient(service)
		if err != nil {
			return err
		}

		orch := orchestrator.New(client, credStore, cache, orchestrator.Config{
			SourceLang:      sourceLang,
			TargetLang:      targetLang,
			MaxSegmentBytes: maxSegmentBytes,
			Concurrency:     concurrency,
			MaxAttempts:     maxRetries,
			BaseDelay:       500 * time.Millisecond,
			MaxDelay:        30 * time.Second,
			BestEffort:      bestEffort,
		})

		var runID string
		if db != nil {
			runID, _ = db.CreateRun(ctx, pdfPath, sourceLang, targetLang, 0)
		}

		translated, err := orch.Run(ctx, text)

		var perr *orchestrator.PartialError
		if err != nil && !(bestEffort && errors.As(err, &perr)) {
			if db != nil && runID != "" {
				_ = db.FinishRun(ctx, runID, "failed", err.Error())
			}
			return err
		}

		if err := os.WriteFile(outPath, []byte(translated), 0644); err != nil {
			if db != nil && runID != "" {
				_ = db.FinishRun(ctx, runID, "failed", err.Error())
			}
			return fmt.Errorf("failed to write output file: %w", err)
		}

		if db != nil && runID != "" {
			status := "completed"
			msg := ""
			if perr != nil {
				status = "partial"
				msg = perr.Error()
			}
			_ = db.FinishRun(ctx, runID, status, msg)
		}

		if perr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", perr)
			fmt.Printf("Partially translated %s to %s: %s\n", sourceLang, targetLang, outPath)
			return nil
		}

		fmt.Printf("Successfully translated %s to %s: %s\n", sourceLang, targetLang, outPath)
		return nil
	},
}

// buildClient selects the translation client by name.
func buildClient(name string) (translator.Client, error) {
	switch name {
	case "google":
		return translator.NewGoogleREST(), nil
	case "google-sdk":
		return translator.NewGoogleSDK(), nil
	default:
		return nil, fmt.Errorf("unknown service: %s (available: google, google-sdk)", name)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: <input>.translated.txt beside the PDF)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "sv", "Target language code")
	translateCmd.Flags().StringVar(&service, "service", "google", "Translation service to use")
	translateCmd.Flags().StringVar(&configPath, "config", "", "Credential file path (default: platform config dir)")

	translateCmd.Flags().IntVar(&maxSegmentBytes, "max-segment-bytes", 0, "Maximum bytes per translation request (0 = default)")
	translateCmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent in-flight translation requests")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 5, "Total attempts per segment including the first")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/pdftran.db", "Database path for segment translation memory")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable segment translation memory")
	translateCmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Write partial output keeping untranslated segments in the source language")
}
