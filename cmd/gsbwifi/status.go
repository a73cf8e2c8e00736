package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shini4i/gsbwifi/internal/portal"
)

func newStatusCmd(with wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the session is authenticated and the remaining quota",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			st, err := a.service().Status(ctx)
			p := newPrinter(a.out)
			if err != nil {
				p.fail(portal.ReasonOf(err))
				return errFailed
			}
			p.status(st)
			if !st.LoggedIn {
				return errFailed
			}
			return nil
		}),
	}
}
