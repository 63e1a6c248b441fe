package main

import (
	"io"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/spf13/cobra"
)

func newRootCmd(c config.Config) *cobra.Command {
	var (
		logLevel  string
		logFormat string
		logFile   string
		noBanner  bool
		logCloser io.Closer
	)

	root := &cobra.Command{
		Use:   "tokenctl",
		Short: "Acquire OAuth2 access tokens from the command line",
		Long: `tokenctl acquires access tokens for a resource, signing the user in through the
system browser or, on headless hosts, by pasting the final redirect URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, closer, err := logging.Setup(logging.Options{
				Level:  logLevel,
				Format: logFormat,
				File:   logFile,
				Out:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			logCloser = closer
			if !noBanner && cmd.Name() != "version" {
				displayAppname(c.GetAppName())
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", c.GetLogLevel(), "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", c.GetLogFormat(), "Log format (console, json)")
	flags.StringVar(&logFile, "log-file", c.GetLogFile(), "Also write logs to this rotating file")
	flags.BoolVar(&noBanner, "no-banner", false, "Do not print the banner")

	root.AddCommand(
		newAcquireCmd(c),
		newAuthorizeURLCmd(c),
		newVersionCmd(),
	)
	return root
}
