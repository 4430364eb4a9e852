package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/factory"
)

type inspectOptions struct {
	configPath       string
	schemaDir        string
	record           string
	columnTypes      string
	associationTypes string
	skipHasOneFK     bool
}

func runInspect(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Println("Usage: nilability-tools inspect [options]")
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}

	opts := inspectOptions{}
	flags.StringVar(&opts.configPath, "config", getenvDefault("CONFIG_FILE", ""), "JSON config file (optional)")
	flags.StringVar(&opts.schemaDir, "schema-dir", getenvDefault("SCHEMA_DIR", ""), "directory of record documents (overrides config)")
	flags.StringVar(&opts.record, "record", "", "only report this record")
	flags.StringVar(&opts.columnTypes, "column-types", "", "persisted, nilable or untyped")
	flags.StringVar(&opts.associationTypes, "association-types", "", "nilable or persisted")
	flags.BoolVar(&opts.skipHasOneFK, "skip-has-one-fk", false, "do not consult NOT NULL foreign keys for has_one relationships")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	config, err := opts.config()
	if err != nil {
		return err
	}
	return inspect(context.Background(), config, opts.record, out)
}

func (o inspectOptions) config() (*nilability.Config, error) {
	config := nilability.DefaultConfig()
	if o.configPath != "" {
		loaded, err := nilability.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if o.schemaDir != "" {
		config.Metadata.Source = nilability.MetadataSourceFile
		config.Metadata.SchemaDirectory = o.schemaDir
	}
	if o.skipHasOneFK {
		config.Inference.HasOneConsultsForeignKeyConstraint = false
	}
	if config.Options == nil {
		config.Options = map[string]string{}
	}
	if o.columnTypes != "" {
		config.Options[nilability.OptionKeyColumnTypes] = o.columnTypes
	}
	if o.associationTypes != "" {
		config.Options[nilability.OptionKeyAssociationTypes] = o.associationTypes
	}
	return config, nil
}

// inspect writes one JSON report per line for the selected records.
func inspect(ctx context.Context, config *nilability.Config, only string, out io.Writer) error {
	rt, err := factory.NewRuntimeWithConfig(ctx, config)
	if err != nil {
		return err
	}
	defer rt.Close()

	names := rt.Registry.ListRecords()
	if only != "" {
		names = []string{only}
	}

	enc := json.NewEncoder(out)
	for _, name := range names {
		report, err := rt.Analyzer.Analyze(ctx, name)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", name, err)
		}
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}
