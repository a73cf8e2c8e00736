package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shini4i/gsbwifi/internal/keepalive"
	"github.com/shini4i/gsbwifi/internal/portal"
)

func newWatchCmd(with wrapper) *cobra.Command {
	var schedule string
	var maxFailures int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive, logging in again when it drops",
		Long: "watch checks the session on a cron schedule and logs in again when the portal shows the login form.\n" +
			"A logout pauses re-authentication until the next login.",
		Args: cobra.NoArgs,
		RunE: with(func(ctx context.Context, a *app, _ []string) error {
			cfg := keepalive.Config{Schedule: a.cfg.KeepaliveSchedule, MaxFailures: maxFailures}
			if schedule != "" {
				cfg.Schedule = schedule
			}
			p := newPrinter(a.out)
			if err := keepalive.ValidateSchedule(cfg.Schedule); err != nil {
				p.fail(err.Error())
				return errFailed
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := keepalive.NewManager(cfg, a.service(), a.pauseMarker())
			m.SetCallbacks(keepalive.Callbacks{
				OnReconnected: func(r portal.Result) { p.result(r) },
				OnFailed: func(err error) {
					p.fail(fmt.Sprintf("Oturum yenilenemedi: %s", portal.ReasonOf(err)))
				},
			})

			m.Tick(ctx)
			if err := m.Start(ctx); err != nil {
				p.fail(err.Error())
				return errFailed
			}
			p.line(p.details.Render(fmt.Sprintf("Oturum izleniyor (%s). Çıkmak için Ctrl+C.", cfg.Schedule)))

			<-ctx.Done()
			m.Stop()
			return nil
		}),
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule overriding keepalive_schedule (e.g. \"@every 2m\")")
	cmd.Flags().IntVar(&maxFailures, "max-failures", keepalive.DefaultConfig().MaxFailures, "consecutive failed logins before giving up")
	return cmd
}
