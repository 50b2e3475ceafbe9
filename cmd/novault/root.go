package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/saylorsolutions/novault/cmd/internal"
	"github.com/saylorsolutions/novault/cmd/internal/config"
	"github.com/saylorsolutions/novault/cmd/internal/lock"
	"github.com/saylorsolutions/novault/cmd/internal/logging"
	"github.com/saylorsolutions/novault/cmd/internal/output"
	"github.com/saylorsolutions/novault/cmd/internal/prompt"
	"github.com/saylorsolutions/novault/cmd/internal/store"
	"github.com/saylorsolutions/novault/pkg/novault"
	"github.com/spf13/cobra"
)

// app is the state shared by every command during one run.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *store.Store
	lock   *lock.Lock
	prompt *prompt.Prompter
	engine *novault.Engine
	exit   func(code int)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, log: zerolog.Nop(), exit: os.Exit}
	defer a.release()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "novault",
		Short: "Deterministic password generator that doesn't store any passwords",
		Long: `novault derives a unique password for every site from one master password.
Only non-secret site metadata, the cost settings, a short checkhash of the
master password, and an optional pepper are stored locally.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	a.cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.initCmd(),
		a.setCmd(),
		a.removeCmd(),
		a.listCmd(),
		a.getCmd(),
		a.exportCmd(),
		a.loopCmd(),
		a.triggerCmd(),
	)
	return root
}

// setup runs before every command, after flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(a.cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = logger
	a.store = store.New(a.cfg.SettingsPath, a.cfg.SitesPath)
	a.prompt = prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr(), a.cfg.Stdin)
	a.engine, err = novault.NewEngine()
	if err != nil {
		return err
	}
	if cmd.Name() == "trigger" {
		return nil
	}
	a.lock, err = lock.Acquire(a.cfg.LockPath)
	if err != nil {
		return err
	}
	logging.Event(a.log, zerolog.DebugLevel, "lock.acquired").Str("path", a.lock.Path()).Send()
	return nil
}

func (a *app) release() {
	if a.lock == nil {
		return
	}
	if err := a.lock.Release(); err != nil {
		logging.Event(a.log, zerolog.WarnLevel, "lock.release").Err(err).Msg("failed to release lock")
	}
	a.lock = nil
}

// readMaster prompts for the master password.
func (a *app) readMaster() (*novault.MasterSecret, error) {
	raw, err := a.prompt.Secret("Master password")
	if err != nil {
		return nil, err
	}
	return novault.NewMasterSecret(raw), nil
}

func (a *app) loadAll() (novault.Settings, novault.Sites, error) {
	settings, err := a.store.LoadSettings()
	if err != nil {
		return novault.Settings{}, nil, err
	}
	sites, err := a.store.LoadSites()
	if err != nil {
		return novault.Settings{}, nil, err
	}
	return settings, sites, nil
}

// deliverer picks stdout or the clipboard, falling back to stdout when there's no clipboard.
func (a *app) deliverer(cmd *cobra.Command, wait bool) (output.Deliverer, bool) {
	out, copied := output.Select(a.cfg.Stdout, cmd.OutOrStdout(), a.cfg.ClipboardClear, wait)
	if !copied && !a.cfg.Stdout {
		internal.Warn(cmd.ErrOrStderr(), "No clipboard utility found, printing to stdout instead")
	}
	return out, copied
}
