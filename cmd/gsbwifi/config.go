package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/shini4i/gsbwifi/internal/config"
	"github.com/shini4i/gsbwifi/internal/credentials"
)

func newConfigCmd(with wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: with(func(_ context.Context, a *app, _ []string) error {
			p := newPrinter(a.out)
			path := a.paths.ConfigFile
			if _, err := os.Stat(path); err == nil && !force {
				p.fail(fmt.Sprintf("%s zaten var (üzerine yazmak için --force)", path))
				return errFailed
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				p.fail(err.Error())
				return errFailed
			}

			if err := a.paths.EnsurePaths(); err != nil {
				p.fail(err.Error())
				return errFailed
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				p.fail(err.Error())
				return errFailed
			}
			p.line(p.success.Render("✔ " + path))
			p.line(p.details.Render(fmt.Sprintf("Kullanıcı bilgisi: %s=..., %s=... veya %s",
				credentials.EnvUsername, credentials.EnvPassword,
				credentials.NewFileProvider(a.configDir).Path(a.cfg.DefaultAccount))))
			return nil
		}),
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: with(func(_ context.Context, a *app, _ []string) error {
			data, err := json.MarshalIndent(a.cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = fmt.Fprintln(a.out, string(data))
			return err
		}),
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gsbwifi %s\n", version)
		},
	}
}
