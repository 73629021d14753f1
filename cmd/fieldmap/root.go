package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/fieldmap/app"
	"github.com/artpar/fieldmap/bootstrap"
	"github.com/artpar/fieldmap/config"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldmap",
	Short: "Declarative field mapping between data containers and upstream APIs",
	Long: `fieldmap turns a YAML definition file into live field mappings.

Containers declare where each output field comes from, how it is
transformed, and when it applies. Endpoints turn extracted mappings
into HTTP calls whose responses feed later extractions.

Quick start:
  fieldmap validate                 # Check the definition file
  fieldmap extract search           # Run one container's mapping
  fieldmap call search              # Extract, call upstream, store response

Local development:
  fieldmap mock                     # Echo server that mirrors requests`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "file", "f", "fieldmap.yaml", "definition file path")
}

// loadApp loads the definition file and wires the application.
func loadApp() (*bootstrap.App, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", cfgFile, err)
	}
	a, err := bootstrap.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize: %w", err)
	}
	return a, cfg, nil
}

// replaceContainerData loads a JSON file into a container's source data.
func replaceContainerData(m *app.Model, container, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse data file: %w", err)
	}
	c, ok := m.Container(container)
	if !ok {
		return fmt.Errorf("unknown container %q", container)
	}
	c.ReplaceData(data)
	return nil
}
