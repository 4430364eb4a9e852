package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lychee-technology/nilability/internal"
)

func runValidate(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Println("Usage: nilability-tools validate [options]")
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}

	var schemaDir string
	flags.StringVar(&schemaDir, "schema-dir", getenvDefault("SCHEMA_DIR", "schemas"), "directory of record documents")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return validateDocuments(context.Background(), internal.NewFileRecordSource(schemaDir), out)
}

// validateDocuments parses every document, reporting each failure, and
// returns an error if any document is invalid.
func validateDocuments(ctx context.Context, source internal.RecordSource, out io.Writer) error {
	docs, err := source.ReadDocuments(ctx)
	if err != nil {
		return err
	}

	failures := 0
	names := make(map[string]string, len(docs))
	for _, raw := range docs {
		def, err := internal.ParseRecordDocument(raw, true)
		if err != nil {
			failures++
			fmt.Fprintf(out, "FAIL %s: %v\n", raw.Source, err)
			continue
		}
		if first, dup := names[def.RecordName]; dup {
			failures++
			fmt.Fprintf(out, "FAIL %s: record %q already defined in %s\n", raw.Source, def.RecordName, first)
			continue
		}
		names[def.RecordName] = raw.Source
		fmt.Fprintf(out, "ok   %s (%s: %d relationships)\n", raw.Source, def.RecordName, len(def.Relationships))
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents invalid", failures, len(docs))
	}
	return nil
}
