package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kymera/internal/trace"
)

// setupTracing reads the trace flags, falling back to the [trace] section
// of the config, and attaches the tracer to the command context.
func setupTracing(cmd *cobra.Command, s *session) error {
	flags := cmd.Root().PersistentFlags()
	pick := func(name, fallback string) (string, error) {
		v, err := flags.GetString(name)
		if err != nil {
			return "", fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		if !flags.Changed(name) {
			return fallback, nil
		}
		return v, nil
	}

	output, err := pick("trace", s.cfg.Trace.Output)
	if err != nil {
		return err
	}
	levelStr, err := pick("trace-level", s.cfg.Trace.Level)
	if err != nil {
		return err
	}
	// --trace alone turns tracing on at phase level
	if flags.Changed("trace") && !flags.Changed("trace-level") && levelStr == "off" {
		levelStr = "phase"
	}
	modeStr, err := pick("trace-mode", s.cfg.Trace.Mode)
	if err != nil {
		return err
	}
	formatStr, err := pick("trace-format", s.cfg.Trace.Format)
	if err != nil {
		return err
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)
	s.tracer = tracer
	s.cleanup = func() {
		heartbeat.Stop()
		if ring, ok := trace.RingOf(tracer); ok && mode == trace.ModeRing {
			if err := ring.Dump(os.Stderr, format); err != nil {
				fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}
	return nil
}
