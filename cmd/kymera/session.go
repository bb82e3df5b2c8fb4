package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kymera/internal/config"
	"kymera/internal/docstore"
	"kymera/internal/query"
	"kymera/internal/trace"
)

// session is the state shared by all commands of one invocation: the
// effective configuration after flag overrides, and the tracer.
type session struct {
	cfg        config.Config
	configPath string
	color      bool
	quiet      bool
	timings    bool
	tracer     trace.Tracer
	cleanup    func()
}

var (
	sess      *session
	closeOnce sync.Once
)

func setupSession(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	s := &session{tracer: trace.Nop, cleanup: func() {}}

	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		s.cfg, err = config.Load(configPath)
		s.configPath = configPath
	} else {
		var wd string
		if wd, err = os.Getwd(); err == nil {
			s.cfg, s.configPath, err = config.Discover(wd)
		}
	}
	if err != nil {
		return err
	}

	if flags.Changed("max-diagnostics") {
		if s.cfg.Engine.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorFlag) {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto", "":
		s.color = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	if err := setupTracing(cmd, s); err != nil {
		return err
	}
	sess = s
	return nil
}

func closeSession() {
	if sess == nil {
		return
	}
	closeOnce.Do(sess.cleanup)
}

// newEngine builds a store and engine from the effective configuration.
// minDocs raises the document limit for batch commands.
func (s *session) newEngine(minDocs int) *query.Engine {
	limit := s.cfg.Engine.MaxDocuments
	if limit > 0 && minDocs > limit {
		limit = minDocs
	}
	store := docstore.New(docstore.Options{
		MaxDocuments:   limit,
		RequestTimeout: s.cfg.Engine.RequestTimeout.Duration,
		Tracer:         s.tracer,
	})
	return query.NewEngine(store, query.Options{
		MaxDiagnostics: s.cfg.Engine.MaxDiagnostics,
		MaxCompletions: s.cfg.Completion.MaxItems,
		Keywords:       s.cfg.Completion.Keywords,
	})
}

// stringFlag returns the value of a string flag of cmd.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return strings.ToLower(strings.TrimSpace(v)), nil
}
