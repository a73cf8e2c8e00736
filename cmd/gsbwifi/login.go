package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newLoginCmd(with wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to the portal",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			result, err := a.service().Login(ctx)
			newPrinter(a.out).result(result)
			if err != nil {
				return errFailed
			}
			// A manual login resumes a watch paused by logout.
			if err := a.pauseMarker().Clear(); err != nil {
				slog.Warn("Failed to clear pause marker", "error", err)
			}
			return nil
		}),
	}
}

func newLogoutCmd(with wrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the portal",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			result, err := a.service().Logout(ctx)
			newPrinter(a.out).result(result)
			if err != nil {
				return errFailed
			}
			if err := a.pauseMarker().Set("logout"); err != nil {
				slog.Warn("Failed to write pause marker", "error", err)
			}
			return nil
		}),
	}
}
