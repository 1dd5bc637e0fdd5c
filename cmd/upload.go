package cmd

import (
	"context"
	"fmt"
	"strings"

	resultrender "github.com/bnema/csvpush/internal/adapters/render/result"
	"github.com/bnema/csvpush/internal/application"
	"github.com/bnema/csvpush/internal/domain"
	"github.com/spf13/cobra"
)

type uploadFlags struct {
	project string
	branch  string
	commit  string
	file    string
	token   string
	asJSON  bool
}

func newUploadCmd(app *app) *cobra.Command {
	var flags uploadFlags

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Authenticate and upload a CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(cmd); err != nil {
				return err
			}
			defer app.close()

			return runUpload(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.project, "project", "", "Project name")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "Branch name")
	cmd.Flags().StringVar(&flags.commit, "commit", "", "Commit hash (sent as both commit and hash)")
	cmd.Flags().StringVar(&flags.file, "file", "", "Path to the CSV file")
	cmd.Flags().StringVar(&flags.token, "token", "", "Pre-issued access token; skips authentication")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Render JSON output")
	cmd.Flags().String("upload-url", "", "Upload endpoint URL")
	cmd.Flags().Bool("insecure-skip-verify", true, "Skip TLS certificate verification for the upload")
	addAuthFlags(cmd)
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("commit")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runUpload(cmd *cobra.Command, app *app, flags uploadFlags) error {
	if err := app.cfg.ValidateUpload(); err != nil {
		return err
	}
	if strings.TrimSpace(flags.token) == "" {
		if err := app.cfg.ValidateAuth(); err != nil {
			return err
		}
	}

	publish := application.PublishCommand{
		Auth:        tokenQuery(app),
		AccessToken: flags.token,
		UploadURL:   app.cfg.Upload.URL,
		Upload: domain.UploadRequest{
			Project:    flags.project,
			Branch:     flags.branch,
			CommitHash: flags.commit,
			FilePath:   flags.file,
		},
	}

	var result application.PublishResult
	run := func(ctx context.Context) error {
		var err error
		result, err = app.service.Publish(ctx, publish)
		return err
	}

	if flags.asJSON || !showSpinner(cmd) {
		if err := run(cmd.Context()); err != nil {
			return err
		}
	} else {
		restore := quietLogs(app.level)
		err := runUploadSpinner(cmd.Context(), cmd.ErrOrStderr(), run)
		restore()
		if err != nil {
			return err
		}
	}

	if flags.asJSON {
		output, err := resultrender.RenderJSON(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
		return err
	}

	insecure := app.cfg.Upload.InsecureSkipVerify && strings.HasPrefix(strings.ToLower(app.cfg.Upload.URL), "https")
	_, err := fmt.Fprintln(cmd.OutOrStdout(), resultrender.Render(result, resultrender.RenderOptions{InsecureTLS: insecure}))
	return err
}
