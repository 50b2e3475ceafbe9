package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/spf13/cobra"
)

func (a *app) setCmd() *cobra.Command {
	var (
		spec      novault.SiteSpec
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Add or replace a site",
		Long: `Adds a site. The format must contain {p} (the whole password) or {p:.N}
(its first N characters), and use at least 4 characters of the password.
Literal braces are written as {{ and }}. Bump --rev to rotate a password.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, sites, err := a.loadAll()
			if err != nil {
				return err
			}
			spec.Name = args[0]
			sites, site, err := novault.SetSite(settings, sites, spec, overwrite)
			if err != nil {
				return err
			}
			if err := a.store.SaveSites(sites); err != nil {
				return err
			}
			logging.Event(a.log, zerolog.InfoLevel, "site.set").Str("site", spec.Name).Uint64("rev", spec.Revision).Msg("site saved")
			internal.Success(cmd.ErrOrStderr(), "Saved %s with format %s", spec.Name, site.Fmt)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&spec.Fmt, "fmt", novault.DefaultFormat, "Password format")
	flags.BoolVar(&spec.Pin, "pin", false, "Generate digits only")
	flags.Uint64Var(&spec.Revision, "rev", 0, "Revision, change it to get a new password for the same site")
	flags.StringVar(&spec.Notes, "notes", "", "Free-form notes, stored in plain text")
	flags.BoolVarP(&overwrite, "overwrite", "o", false, "Replace an existing site")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sites, err := a.store.LoadSites()
			if err != nil {
				return err
			}
			sites, err = novault.RemoveSite(sites, args[0])
			if err != nil {
				return err
			}
			if err := a.store.SaveSites(sites); err != nil {
				return err
			}
			logging.Event(a.log, zerolog.InfoLevel, "site.remove").Str("site", args[0]).Msg("site removed")
			internal.Success(cmd.ErrOrStderr(), "Removed %s", args[0])
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sites, err := a.store.LoadSites()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tPIN\tFMT\tNOTES")
			for _, name := range sites.Names() {
				site := sites[name]
				_, _ = fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", name, site.Pin, site.Fmt, site.Notes)
			}
			return tw.Flush()
		},
	}
}
