package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// runFunc is a command body that runs once the app is resolved.
type runFunc func(ctx context.Context, a *app, args []string) error

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "gsbwifi",
		Short:         "GSB WiFi captive portal client",
		Long:          "gsbwifi logs in to and out of the GSB WiFi captive portal (wifi.gsb.gov.tr) and reports the remaining quota.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gsbwifi/config.json)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with WIFI_* variables")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging (same as GSBWIFI_DEBUG=1)")
	flags.IntVarP(&opts.account, "account", "a", 0, "credential account number (default from config)")
	flags.BoolVar(&opts.skipPreflight, "skip-preflight", false, "skip the DNS, reachability and SSID check before login")

	// with resolves the app before running fn and prints resolution errors.
	with := func(fn runFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				newPrinter(cmd.ErrOrStderr()).fail(err.Error())
				return errFailed
			}
			return fn(cmd.Context(), a, args)
		}
	}

	root.AddCommand(
		newLoginCmd(with),
		newLogoutCmd(with),
		newStatusCmd(with),
		newWatchCmd(with),
		newConfigCmd(with),
		newVersionCmd(),
	)
	return root
}

type wrapper func(runFunc) func(cmd *cobra.Command, args []string) error
