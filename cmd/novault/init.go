package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/cmd/internal/store"
	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/spf13/cobra"
)

func (a *app) initCmd() *cobra.Command {
	var (
		level, mem, threads uint32
		noPepper, installID bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the settings file from a new master password",
		Long: `Creates the settings file. The cost parameters, pepper, and install id are
inputs to every password, so they can't be changed later. Back up the settings
file: without the pepper, no password can be regenerated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.store.SettingsExist() {
				return fmt.Errorf("%w at %s, remove it first to start over", store.ErrExists, a.cfg.SettingsPath)
			}
			policy := a.engine.Policy()
			internal.Warn(cmd.ErrOrStderr(), "Choose a master password of %d to %d bytes, it can't be changed without changing every password", policy.Min, policy.Max)
			raw, err := a.prompt.NewSecret("Master password")
			if err != nil {
				return err
			}
			master := novault.NewMasterSecret(raw)
			defer master.Destroy()

			opts := []novault.Option{
				novault.WithLevel(level),
				novault.WithMemory(mem),
				novault.WithThreads(threads),
			}
			if noPepper {
				opts = append(opts, novault.WithoutPepper())
			}
			if installID {
				opts = append(opts, novault.WithRandomInstallID())
			}
			settings, _, err := a.engine.Init(master, opts...)
			if err != nil {
				return err
			}
			if err := a.store.CreateSettings(settings); err != nil {
				return err
			}
			logging.Event(a.log, zerolog.InfoLevel, "settings.init").
				Uint32("level", level).
				Uint32("mem", mem).
				Uint32("threads", threads).
				Bool("pepper", settings.HasPepper()).
				Msg("settings created")
			internal.Success(cmd.ErrOrStderr(), "Settings written to %s", a.cfg.SettingsPath)
			if settings.HasPepper() {
				internal.Warn(cmd.ErrOrStderr(), "Back up this file, the pepper in it is needed to regenerate every password")
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Uint32Var(&level, "level", novault.DefaultLevel, "Number of Argon2 passes")
	flags.Uint32Var(&mem, "mem", novault.DefaultMemMiB, "Argon2 memory in MiB")
	flags.Uint32Var(&threads, "threads", novault.DefaultThreads, "Argon2 lanes")
	flags.BoolVar(&noPepper, "no-pepper", false, "Don't generate a pepper, the master password alone derives every password")
	flags.BoolVar(&installID, "install-id", false, "Mix a random install id into every salt, so passwords differ from other installs")
	return cmd
}
