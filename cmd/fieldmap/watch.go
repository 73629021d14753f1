package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artpar/fieldmap/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch <container>",
	Short: "Re-run a container's mapping whenever the definition file changes",
	Long: `Extract a container's mapping, then keep watching the definition
file: every saved change (or SIGHUP) rebuilds the model and prints the
fresh extraction. A tight loop for developing mappings.

Examples:
  fieldmap watch search
  fieldmap watch search -f mappings.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, _, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	printExtraction := func() {
		res, err := a.Model().Extract(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "extract %s: %v\n", name, err)
			return
		}
		for _, line := range res.Diags.Strings() {
			fmt.Fprintf(os.Stderr, "diagnostic: %s\n", line)
		}
		out, err := json.MarshalIndent(res.Fields, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
			return
		}
		fmt.Println(string(out))
	}
	printExtraction()

	holder, err := config.NewHolder(cfgFile, a.Logger)
	if err != nil {
		return fmt.Errorf("watch %s: %w", cfgFile, err)
	}
	defer holder.Stop()

	holder.OnChange(func(next *config.Config) {
		if err := a.Rebuild(next); err != nil {
			a.Logger.Error().Err(err).Msg("rebuild after reload failed")
			return
		}
		printExtraction()
	})

	if err := holder.WatchFile(); err != nil {
		return fmt.Errorf("watch %s: %w", cfgFile, err)
	}
	holder.WatchSignals()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return nil
}
