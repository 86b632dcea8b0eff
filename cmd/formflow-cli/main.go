package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/govtech-bb/formflow/internal/prompt"
	"github.com/govtech-bb/formflow/pkg/openapi"
	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/submission"
)

func main() {
	schemaPath := flag.String("schema", "", "form schema file (JSON or YAML)")
	output := flag.String("output", "", "write collected values to file (stdout if empty)")
	submitURL := flag.String("submit", "", "submission backend base URL (skip submission if empty)")
	exportOpenAPI := flag.Bool("openapi", false, "print the form's OpenAPI document and exit")
	flag.Parse()

	if *schemaPath == "" {
		log.Fatal("missing -schema")
	}

	form, err := schema.LoadFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	if *exportOpenAPI {
		doc, err := openapi.BuildDocument(form)
		if err != nil {
			log.Fatalf("Failed to build OpenAPI document: %v", err)
		}
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode OpenAPI document: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	walker := prompt.NewWalker(form, prompt.NewSurveyDriver())
	vals, err := walker.Run(ctx)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Println("Aborted.")
			os.Exit(1)
		}
		log.Fatalf("Walk failed: %v", err)
	}

	if *submitURL != "" {
		client, err := submission.New(*submitURL)
		if err != nil {
			log.Fatalf("Failed to build submission client: %v", err)
		}
		res, err := client.Submit(ctx, form.ID, vals)
		if err != nil {
			log.Fatalf("Submission failed: %v", err)
		}
		if res.Data != nil && res.Data.ReferenceNumber != "" {
			fmt.Printf("Submitted. Reference number: %s\n", res.Data.ReferenceNumber)
		} else {
			fmt.Printf("Submitted: %s\n", res.Message)
		}
		return
	}

	out, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode values: %v", err)
	}
	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Values written to %s\n", *output)
	} else {
		fmt.Println(string(out))
	}
}
