package main

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "inspect":
		if err := runInspect(os.Args[2:], os.Stdout); err != nil {
			sugar.Fatalf("inspect: %v", err)
		}
	case "validate":
		if err := runValidate(os.Args[2:], os.Stdout); err != nil {
			sugar.Fatalf("validate: %v", err)
		}
	case "introspect":
		if err := runIntrospect(os.Args[2:]); err != nil {
			sugar.Fatalf("introspect: %v", err)
		}
	case "bundle":
		if err := runBundle(os.Args[2:]); err != nil {
			sugar.Fatalf("bundle: %v", err)
		}
	default:
		sugar.Errorf("unknown command %q", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	logger := zap.S()
	logger.Info("Usage: nilability-tools <command> [options]")
	logger.Info("")
	logger.Info("Commands:")
	logger.Info("  inspect      Print nilability and requiredness reports for records")
	logger.Info("  validate     Check record documents against the document schema")
	logger.Info("  introspect   Write skeleton record documents from database columns")
	logger.Info("  bundle       Combine record documents into one snapshot bundle (file or S3)")
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
