package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"libraryhub/internal/adapters/client"

	"github.com/spf13/cobra"
)

const (
	envBaseURL = "LIBRARYCTL_BASE_URL"
	envToken   = "LIBRARYCTL_TOKEN"
	envSchool  = "LIBRARYCTL_SCHOOL"
)

// options are the persistent flags shared by every subcommand
type options struct {
	baseURL string
	token   string
	school  string
	timeout time.Duration
	out     io.Writer
}

func (o *options) client() *client.Client {
	return client.New(o.baseURL, client.WithToken(o.token), client.WithTimeout(o.timeout))
}

func (o *options) requireSchool() error {
	if o.school == "" {
		return errors.New("--school (or " + envSchool + ") is required")
	}
	return nil
}

func (o *options) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Manage a school library through the LibraryHub API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", envOr(envBaseURL, "http://localhost:3000/api/v1"), "API base URL including /api/v1")
	flags.StringVar(&opts.token, "token", os.Getenv(envToken), "access token")
	flags.StringVar(&opts.school, "school", os.Getenv(envSchool), "school name")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		newLoginCmd(opts),
		newBooksCmd(opts),
		newLoansCmd(opts),
		newIssueCmd(opts),
		newReturnCmd(opts),
		newDeleteLoanCmd(opts),
		newCleanupCmd(opts),
		newRestoreCmd(opts),
		newDashboardCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
