package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/fieldmap/bootstrap"
	"github.com/artpar/fieldmap/config"
	"github.com/rs/zerolog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the definition file",
	Long: `Validate a fieldmap definition file.

Checks:
  - YAML syntax is valid
  - Container, template, and endpoint references resolve
  - The model builds, reporting declaration diagnostics
  - Upstream is reachable (optional)

Examples:
  fieldmap validate
  fieldmap validate -f /etc/fieldmap/mappings.yaml --check-upstream`,
	RunE: runValidate,
}

var validateCheckUpstream bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckUpstream, "check-upstream", false, "check if upstream is reachable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Definition file exists\n", crossMark)
		return fmt.Errorf("definition file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Definition file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Definitions valid\n", crossMark)
		return fmt.Errorf("definition error: %w", err)
	}
	fmt.Printf("  %s Definitions valid\n", checkMark)

	// Build the model to surface declaration diagnostics
	logger := zerolog.Nop()
	_, diags, err := bootstrap.BuildModel(cfg, logger)
	if err != nil {
		fmt.Printf("  %s Model builds\n", crossMark)
		return fmt.Errorf("model error: %w", err)
	}
	if len(diags) > 0 {
		fmt.Printf("  %s Model builds with %d diagnostic(s):\n", crossMark, len(diags))
		for _, line := range diags.Strings() {
			fmt.Printf("      %s\n", line)
		}
	} else {
		fmt.Printf("  %s Model builds\n", checkMark)
	}

	fmt.Printf("  %s Templates: %d\n", checkMark, len(cfg.Templates))
	fmt.Printf("  %s Containers: %d\n", checkMark, len(cfg.Containers))
	fmt.Printf("  %s Endpoints: %d\n", checkMark, len(cfg.Endpoints))
	if cfg.Client.BaseURL != "" {
		fmt.Printf("  %s Upstream: %s\n", checkMark, cfg.Client.BaseURL)
	}

	if validateCheckUpstream {
		if cfg.Client.BaseURL == "" {
			fmt.Printf("  %s Upstream reachable (no base URL configured)\n", crossMark)
		} else if err := checkUpstreamReachable(cfg.Client.BaseURL); err != nil {
			fmt.Printf("  %s Upstream reachable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Upstream reachable\n", checkMark)
		}
	}

	fmt.Println()
	if len(diags) > 0 {
		fmt.Println("Definitions load, but with diagnostics.")
		return nil
	}
	fmt.Println("Definitions are valid.")
	return nil
}

func checkUpstreamReachable(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
