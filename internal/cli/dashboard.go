package cli

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"pkt.systems/pslog"

	"github.com/theirongolddev/panewatch/internal/config"
	"github.com/theirongolddev/panewatch/internal/logging"
	"github.com/theirongolddev/panewatch/internal/output"
	"github.com/theirongolddev/panewatch/internal/session"
	"github.com/theirongolddev/panewatch/internal/shellhistory"
	"github.com/theirongolddev/panewatch/internal/tui/dashboard"
)

func runDashboard(cmd *cobra.Command, o *rootOptions, command string) error {
	out := cmd.OutOrStdout()
	if !output.IsTerminal(out) {
		return output.NotTerminalError()
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger, closer, err := logging.Open(cfg.LogsDir, cfg.LogLevel)
	if err != nil {
		return output.NewCLIError("failed to open log file").WithCause(err)
	}
	defer closer.Close()
	logging.RedirectStdlib(logger)
	ctx = pslog.ContextWithLogger(ctx, logger)
	logger.Info("dashboard starting", "version", Version, "config", cfg.Path, "command", command)

	history := loadShellHistory(logger)

	reloads := make(chan *config.Config, 1)
	stopWatch, err := config.Watch(o.configFile(), func(next *config.Config) {
		if offerReload(reloads, config.MergeFlags(next, o.flags(cmd))) {
			logger.Debug("config reload replaced a pending one")
		}
	}, func(err error) {
		logger.Warn("config watch", "err", err)
	})
	if err != nil {
		logger.Warn("config reload disabled", "err", err)
	} else {
		defer stopWatch()
	}

	width, height := 80, 24
	if f, ok := out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil {
			width, height = w, h
		}
	}

	m, err := dashboard.New(ctx, dashboard.Options{
		Config:  cfg,
		Store:   session.NewStore(cfg.SessionsDir),
		History: history,
		Command: command,
		Session: o.session,
		Latest:  o.latest,
		Reloads: reloads,
		Bell:    os.Stderr,
		Width:   width,
		Height:  height,
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) && o.session != "" {
			return output.SessionNotFoundError(o.session, err)
		}
		if errors.Is(err, session.ErrNoSessions) {
			return output.NewCLIError("no saved sessions").WithCause(err).WithHint(output.HintNoSessions)
		}
		return err
	}

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(cmd.InOrStdin()),
	)
	final, err := p.Run()
	if fm, ok := final.(dashboard.Model); ok {
		fm.Close()
		m = fm
	} else {
		m.Close()
	}
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		logger.Error("dashboard failed", "err", err)
		return err
	}

	logger.Info("dashboard stopped", "exit_code", m.ExitCode(), "reason", m.ExitReason())
	if m.ExitCode() != 0 || m.ExitReason() != "" {
		return &ExitError{Code: m.ExitCode(), Reason: m.ExitReason()}
	}
	return nil
}

// offerReload queues cfg for the dashboard, replacing a reload it has not
// picked up yet so the newest file contents win. It reports whether a
// pending reload was replaced.
func offerReload(reloads chan *config.Config, cfg *config.Config) bool {
	replaced := false
	for {
		select {
		case reloads <- cfg:
			return replaced
		default:
		}
		select {
		case <-reloads:
			replaced = true
		default:
		}
	}
}

// loadShellHistory reads the user's shell history for command completion.
// A missing or unreadable file leaves completion empty.
func loadShellHistory(logger pslog.Logger) *shellhistory.History {
	path, err := shellhistory.DefaultPath()
	if err != nil {
		logger.Debug("shell history unavailable", "err", err)
		return shellhistory.New(nil)
	}
	h, err := shellhistory.Load(path)
	if err != nil {
		logger.Warn("reading shell history", "path", path, "err", err)
		return shellhistory.New(nil)
	}
	logger.Debug("shell history loaded", "path", path, "commands", h.Len())
	return h
}
