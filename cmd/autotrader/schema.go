package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-autopilot/internal/config"
	"github.com/rxtech-lab/argo-autopilot/internal/version"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName = "autopilot-config.json"
	sampleFileName = "autopilot-config.yaml"
)

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.GetConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	output := cmd.String("output")
	if output == "" {
		_, err = fmt.Fprintln(cmd.Root().Writer, schema)

		return err
	}

	if err := os.WriteFile(output, []byte(schema), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", output, err)
	}

	return nil
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return err
}

// initAction writes the config schema and, unless one already exists, a
// sample config holding the defaults into the output directory.
func initAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")

	schema, err := config.GetConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	schemaPath := filepath.Join(dir, schemaFileName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0o644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", schemaPath, err)
	}

	samplePath := filepath.Join(dir, sampleFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	sample, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	sample = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), sample...)

	if err := os.WriteFile(samplePath, sample, 0o644); err != nil {
		return fmt.Errorf("failed to write sample config to %s: %w", samplePath, err)
	}

	return nil
}
