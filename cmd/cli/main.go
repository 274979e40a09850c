package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	rootCmd := &cobra.Command{
		Use:           "assetledger-cli",
		Short:         "AssetLedger CLI tool",
		Long:          `A command line interface for running depreciation, disposal and ledger checks against the AssetLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("ASSETLEDGER_URL", "http://localhost:8080"), "Base URL of the AssetLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ASSETLEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		depreciationCmd(opts),
		assetsCmd(opts),
		ledgerCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
