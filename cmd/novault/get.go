package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) getCmd() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Generate a site's password",
		Long: `Generates a site's password, and copies it to the clipboard (cleared after
--clear-after) or prints it with --stdout. With --wait, the password is
delivered only once 'novault trigger' runs, which can be bound to a key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, sites, err := a.loadAll()
			if err != nil {
				return err
			}
			site, err := novault.Lookup(sites, args[0])
			if err != nil {
				return err
			}
			master, err := a.readMaster()
			if err != nil {
				return err
			}
			defer master.Destroy()

			pass, err := a.engine.GetPassword(settings, site, master)
			if err != nil {
				if errors.Is(err, novault.ErrCheckFailed) {
					logging.Event(a.log, zerolog.WarnLevel, "checkhash.failed").Msg("master password rejected")
				}
				return err
			}
			defer pass.Destroy()

			if wait {
				internal.Warn(cmd.ErrOrStderr(), "Waiting for 'novault trigger' or a write to %s...", a.lock.Path())
				if err := a.lock.WaitTrigger(cmd.Context(), 0); err != nil {
					return err
				}
			}
			out, copied := a.deliverer(cmd, true)
			if copied {
				internal.Warn(cmd.ErrOrStderr(), "Copied to the clipboard, clearing in %s", a.cfg.ClipboardClear)
			}
			if err := out.Deliver(cmd.Context(), pass); err != nil {
				return err
			}
			logging.Event(a.log, zerolog.InfoLevel, "site.get").Str("site", args[0]).Msg("password delivered")
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for 'novault trigger' before delivering the password")
	return cmd
}

var errExportDeclined = errors.New("export cancelled")

func (a *app) exportCmd() *cobra.Command {
	var insecure bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every site's password as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !insecure {
				return errors.New("export prints every password in plain text, pass --insecure to confirm")
			}
			settings, sites, err := a.loadAll()
			if err != nil {
				return err
			}
			internal.Warn(cmd.ErrOrStderr(), "Every password will be printed in plain text")
			ok, err := a.prompt.Confirm("Print every password?")
			if err != nil {
				return err
			}
			if !ok {
				return errExportDeclined
			}
			master, err := a.readMaster()
			if err != nil {
				return err
			}
			defer master.Destroy()

			all, err := a.engine.Export(settings, sites, master)
			if err != nil {
				return err
			}
			plain := make(map[string]string, len(all))
			for name, pass := range all {
				plain[name] = pass.Reveal()
				pass.Destroy()
			}
			data, err := yaml.Marshal(plain)
			if err != nil {
				return err
			}
			logging.Event(a.log, zerolog.WarnLevel, "sites.export").Int("count", len(plain)).Msg("passwords exported")
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Confirm that every password may be printed")
	return cmd
}
