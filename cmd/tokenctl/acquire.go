package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/token/memcache"
	"github.com/jrsteele09/go-auth-client/webui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAcquireCmd(c config.Config) *cobra.Command {
	var (
		rf        requestFlags
		console   bool
		showToken bool
	)

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire an access token, signing the user in when needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			req.Cache = memcache.New(memcache.WithLogger(log.Logger))

			var ui webui.WebUI = webui.NewBrowser(webui.WithBrowserLogger(log.Logger))
			if console {
				ui = webui.NewConsole(cmd.InOrStdin(), cmd.ErrOrStderr())
			}

			opts := append(rf.acquirerOptions(), auth.WithWebUI(ui))
			a, err := auth.New(newExchanger(c), opts...)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, c.GetInteractiveTimeout())
			defer cancelTimeout()

			result, err := acquire(ctx, a, req)
			if err != nil {
				return err
			}
			return printResult(cmd, result, showToken)
		},
	}
	rf.register(cmd, c)
	cmd.Flags().BoolVar(&console, "console", false, "Print the sign-in URL and read the redirect URL from stdin")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "Print the raw access token")
	return cmd
}

// acquire tries a silent acquisition first and signs the user in only when that needs interaction.
func acquire(ctx context.Context, a *auth.Acquirer, req auth.Request) (*token.Result, error) {
	result, err := a.AcquireTokenSilent(ctx, req)
	if err == nil {
		return result, nil
	}
	if oauthmodel.CodeOf(err) != oauthmodel.CodeUserInteractionRequired {
		return nil, err
	}
	log.Debug().Err(err).Msg("silent acquisition needs interaction")
	return a.AcquireTokenInteractive(ctx, req)
}

func printResult(cmd *cobra.Command, result *token.Result, showToken bool) error {
	out := cmd.OutOrStdout()
	if showToken {
		_, err := fmt.Fprintln(out, result.AccessToken)
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[printResult] marshal result")
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
