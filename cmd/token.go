package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/csvpush/internal/application"
	"github.com/bnema/csvpush/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Request an access token and print the token response as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			defer app.close()

			if err := app.cfg.ValidateAuth(); err != nil {
				return err
			}

			token, err := app.service.Token(cmd.Context(), tokenQuery(app))
			if err != nil {
				return err
			}

			return writeJSON(cmd, token)
		},
	}

	addAuthFlags(cmd)

	return cmd
}

func tokenQuery(app *app) application.TokenQuery {
	return application.TokenQuery{
		URL: app.cfg.Auth.URL,
		Credentials: domain.Credentials{
			Username:  app.cfg.Auth.Username,
			Password:  app.cfg.Auth.Password,
			ClientID:  app.cfg.Auth.ClientID,
			GrantType: app.cfg.Auth.GrantType,
		},
		PasswordSecret: app.cfg.Auth.PasswordSecret,
	}
}

func writeJSON(cmd *cobra.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
