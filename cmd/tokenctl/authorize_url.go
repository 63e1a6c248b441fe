package main

import (
	"fmt"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/spf13/cobra"
)

func newAuthorizeURLCmd(c config.Config) *cobra.Command {
	var rf requestFlags

	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the authorization URL a sign-in would open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.request()
			if err != nil {
				return err
			}
			a, err := auth.New(newExchanger(c), rf.acquirerOptions()...)
			if err != nil {
				return err
			}
			u, err := a.AuthorizationURL(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		},
	}
	rf.register(cmd, c)
	return cmd
}
