package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <container>",
	Short: "Run one container's field mapping",
	Long: `Extract a container's field mapping and print the result.

The output is a JSON object whose keys follow the mapping's
declaration order. Diagnostics go to stderr; with --strict they also
make the command fail.

Examples:
  fieldmap extract search
  fieldmap extract search -d payload.json
  fieldmap extract search --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractDataFile string
	extractStrict   bool
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractDataFile, "data", "d", "", "JSON file replacing the container's data")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "fail when the extraction reports diagnostics")
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, _, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	if extractDataFile != "" {
		if err := replaceContainerData(a.Model(), name, extractDataFile); err != nil {
			return err
		}
	}

	res, err := a.Model().Extract(name)
	if err != nil {
		return fmt.Errorf("extract %s: %w", name, err)
	}

	for _, line := range res.Diags.Strings() {
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", line)
	}

	out, err := json.MarshalIndent(res.Fields, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))

	if extractStrict && len(res.Diags) > 0 {
		return fmt.Errorf("%d diagnostic(s) reported", len(res.Diags))
	}
	return nil
}
