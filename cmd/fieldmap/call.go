package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <endpoint>",
	Short: "Extract, call the upstream endpoint, and print the response",
	Long: `Run an endpoint end to end: extract its container's mapping,
build the HTTP request from it, call the upstream, and print the
response. When the endpoint declares an "into" container, the decoded
response is stored there for later extractions.

Examples:
  fieldmap call search
  fieldmap call search -d payload.json
  fieldmap call search --show-mapping`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

var (
	callDataFile    string
	callShowMapping bool
	callTimeout     time.Duration
)

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&callDataFile, "data", "d", "", "JSON file replacing the container's data")
	callCmd.Flags().BoolVar(&callShowMapping, "show-mapping", false, "print the extracted mapping before calling")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "overall call timeout")
}

func runCall(cmd *cobra.Command, args []string) error {
	a, _, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ep, ok := a.Endpoint(args[0])
	if !ok {
		return fmt.Errorf("unknown endpoint %q", args[0])
	}

	if callDataFile != "" {
		if err := replaceContainerData(a.Model(), ep.Container, callDataFile); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	resp, res, err := a.Requests().Call(ctx, ep)
	if res != nil {
		for _, line := range res.Diags.Strings() {
			fmt.Fprintf(os.Stderr, "diagnostic: %s\n", line)
		}
		if callShowMapping {
			mapping, mErr := json.MarshalIndent(res.Fields, "", "  ")
			if mErr == nil {
				fmt.Fprintf(os.Stderr, "mapping: %s\n", mapping)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("call %s: %w", ep.Name, err)
	}

	method := strings.ToUpper(ep.Method)
	if method == "" {
		method = "GET"
	}
	fmt.Printf("%s %s -> %d (%d ms)\n", method, ep.Path, resp.Status, resp.LatencyMs)
	if resp.Data != nil {
		body, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		fmt.Println(string(body))
	} else if len(resp.Body) > 0 {
		fmt.Println(string(resp.Body))
	}

	if ep.Into != "" {
		fmt.Fprintf(os.Stderr, "response stored in container %q\n", ep.Into)
	}
	return nil
}
