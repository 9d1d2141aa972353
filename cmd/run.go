package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/meerkat/internal/alert"
	"github.com/tonhe/meerkat/internal/config"
	"github.com/tonhe/meerkat/internal/engine"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/internal/logging"
	"github.com/tonhe/meerkat/internal/meerkat"
	"github.com/tonhe/meerkat/internal/metrics"
	"github.com/tonhe/meerkat/tui"
	"github.com/tonhe/meerkat/tui/styles"
)

// RunOptions are the command-line overrides for the interactive viewer.
type RunOptions struct {
	Dashboard string
	Theme     string
}

var errNoIcinga = errors.New("icinga_url is not configured; run 'meerkat config icinga URL'")

// noIcinga fails every poll so the viewer still opens, marked stale,
// before the Icinga API is configured.
type noIcinga struct{}

func (noIcinga) Fetch(context.Context, icinga.Selector) (icinga.Result, error) {
	return icinga.Result{}, errNoIcinga
}

// Run launches the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	cfg := loadOrDefaultConfig()
	if opts.Theme != "" {
		t, ok := styles.Lookup(opts.Theme)
		if !ok {
			return fmt.Errorf("unknown theme %q", opts.Theme)
		}
		cfg.Theme = t.Slug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if logFile == "" {
		if logFile, err = config.GetLogPath(); err != nil {
			return err
		}
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: "json", File: logFile}); err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logging.Close()
	log := logging.Logger()

	// the vault may prompt, so resolve the credential before the TUI starts
	var fetcher engine.Fetcher = noIcinga{}
	if cfg.IcingaURL != "" {
		client, err := newIcingaClient(cfg, "")
		if err != nil {
			return err
		}
		fetcher = client
	} else {
		fmt.Fprintln(os.Stderr, "Warning: "+errNoIcinga.Error())
	}

	server, err := meerkat.NewClient(cfg.MeerkatURL, cfg.RequestTimeout, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server")
			}
		}()
	}

	mgr := engine.NewManager(ctx, fetcher, engine.Options{
		Lag:           cfg.RefreshLag,
		MinInterval:   cfg.MinInterval,
		RetryInterval: cfg.RetryInterval,
		History:       cfg.MaxHistory,
	}, log)

	out := tui.NewOutput(os.Stdout)
	var (
		player  alert.Player = alert.BellPlayer{W: out}
		streams alert.Player
	)
	if cfg.SoundCommand != "" {
		player = alert.CommandPlayer{Command: cfg.SoundCommand}
		streams = player
	}
	coord := alert.NewCoordinator(player, log, alert.WithResolver(server.ResolveURL))
	live := tui.NewLiveSession(coord, streams, server.ResolveURL, log)

	model := tui.NewAppModel(ctx, tui.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		Service:    server,
		Monitor:    mgr,
		Live:       live,
		Logger:     log,
		Version:    Version,
		Slug:       opts.Dashboard,
	})

	log.Info().Str("meerkat", cfg.MeerkatURL).Str("icinga", cfg.IcingaURL).Msg("starting")
	p := tea.NewProgram(model, tea.WithOutput(out), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
