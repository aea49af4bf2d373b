package main

import (
	"context"
	"os"

	"github.com/loykin/modelfetch/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "modelfetch",
	Short:         "Fetch the model list from the Generative Language API and save it as JSON",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return NewFetchRunner(viper.GetViper(), cmd.OutOrStdout()).Run(ctx)
	},
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "")
	v.SetDefault("limit", constants.DefaultHistoryLimit)

	// Environment variables support: MODELFETCH_API_KEY, MODELFETCH_OUTPUT, ...
	v.SetEnvPrefix("MODELFETCH")
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("config", v.GetString("config"), "path to an optional config yaml")
	pf.String("log-level", "", "log level: error, warn, info, debug")
	pf.String("log-format", "", "log format: text, json, color")
	pf.String("history-path", "", "sqlite file for run history")

	f := rootCmd.Flags()
	f.String("api-key", "", "access key (prefer MODELFETCH_API_KEY or GEMINI_API_KEY)")
	f.String("base-url", "", "API base url")
	f.StringP("output", "o", "", "output file path")
	f.String("timeout", "", "request timeout, e.g. 30s (default: none)")
	f.Bool("insecure", false, "skip TLS certificate verification")
	f.Bool("history", false, "record this run in the history store")

	HistoryCmd.Flags().Int("limit", v.GetInt("limit"), "number of runs to show")

	_ = v.BindPFlag("config", pf.Lookup("config"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))
	_ = v.BindPFlag("history_path", pf.Lookup("history-path"))
	_ = v.BindPFlag("api_key", f.Lookup("api-key"))
	_ = v.BindPFlag("base_url", f.Lookup("base-url"))
	_ = v.BindPFlag("output", f.Lookup("output"))
	_ = v.BindPFlag("timeout", f.Lookup("timeout"))
	_ = v.BindPFlag("insecure", f.Lookup("insecure"))
	_ = v.BindPFlag("history", f.Lookup("history"))
	_ = v.BindPFlag("limit", HistoryCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(HistoryCmd)
}

func main() {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
