package cmd

import (
	"fmt"

	"github.com/bnema/csvpush/internal/config"
	"github.com/spf13/cobra"
)

const redacted = "********"

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the csvpush config file",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a template config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := app.homeDir()
			if err != nil {
				return err
			}

			path := app.opts.ConfigFile
			if path == "" {
				path = config.DefaultPath(home)
			}

			if err := config.Write(path, config.Template(home), force); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			defer app.close()

			cfg := app.cfg
			if cfg.Auth.Password != "" {
				cfg.Auth.Password = redacted
			}

			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}

			if cfg.File != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.File)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	addAuthFlags(cmd)
	cmd.Flags().String("upload-url", "", "Upload endpoint URL")
	cmd.Flags().Bool("insecure-skip-verify", true, "Skip TLS certificate verification for the upload")
	cmd.Flags().String("secrets-dir", "", "Secret store directory")

	return cmd
}
