package main

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal/lock"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/cmd/internal/prompt"
	"github.com/saylorsolutions/novault/cmd/internal/ui"
	"github.com/saylorsolutions/novault/pkg/session"
	"github.com/spf13/cobra"
)

func (a *app) loopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loop",
		Short: "Pick sites interactively, typing the master password only once",
		Long: `Validates the master password once, then asks for a short session password
for each site. Three wrong session passwords in a row end the process.
New sites can be added from the list without leaving the loop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, sites, err := a.loadAll()
			if err != nil {
				return err
			}
			master, err := a.readMaster()
			if err != nil {
				return err
			}
			defer master.Destroy()
			sessionPassword, err := a.prompt.NewSecret("Session password")
			if err != nil {
				return err
			}
			defer prompt.Wipe(sessionPassword)

			var (
				view     *ui.App
				stopOnce sync.Once
			)
			cache, err := session.New(
				session.WithEngine(a.engine),
				session.WithTTL(a.cfg.SessionTTL),
				session.WithExitFunc(func(code int) {
					stopOnce.Do(func() {
						if view != nil {
							view.Stop()
						}
					})
					logging.Event(a.log, zerolog.ErrorLevel, "session.exhausted").Msg("too many wrong session passwords")
					a.release()
					a.exit(code)
				}),
			)
			if err != nil {
				return err
			}
			defer cache.Close()
			if err := cache.Begin(settings, master, sessionPassword); err != nil {
				return err
			}
			master.Destroy()
			prompt.Wipe(sessionPassword)
			logging.Event(a.log, zerolog.InfoLevel, "session.begin").Int("sites", len(sites)).Msg("session started")

			out, _ := a.deliverer(cmd, false)
			view = ui.New(ui.Model{
				Engine:   a.engine,
				Settings: settings,
				Sites:    sites,
				Cache:    cache,
				Output:   out,
				Logger:   a.log,
				Save:     a.store.SaveSites,
			})
			return view.Run()
		},
	}
}

func (a *app) triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Release a 'get --wait' that is waiting for the password to be delivered",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return lock.Trigger(a.cfg.LockPath)
		},
	}
}
