package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "csvpush",
		Short:         "Upload CSV reports to an API using OAuth2 password-grant tokens",
		Long:          "csvpush authenticates against an OAuth2 token endpoint with the password grant and uploads a CSV report, tagged with project, branch and commit, as a multipart form.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.opts.ConfigFile, "config", "", "Config file (default ~/.csvpush/config.toml)")
	flags.StringVar(&app.opts.EnvFile, "env-file", "", "Env file loaded before reading CSVPUSH_* variables (default ./.env when present)")
	flags.String("log-level", "info", "Log level (debug|info|warn|error)")
	flags.String("log-format", "console", "Log format (console|json)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newTokenCmd(app),
		newUploadCmd(app),
		newConfigCmd(app),
		newSecretCmd(app),
	)

	return rootCmd
}
