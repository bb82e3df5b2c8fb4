package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up by Discover.
const FileName = "kymera.toml"

// Config is the decoded kymera.toml.
type Config struct {
	Engine     EngineConfig     `toml:"engine"`
	Completion CompletionConfig `toml:"completion"`
	Trace      TraceConfig      `toml:"trace"`
}

type EngineConfig struct {
	MaxDocuments   int      `toml:"max_documents"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
}

type CompletionConfig struct {
	MaxItems int  `toml:"max_items"`
	Keywords bool `toml:"keywords"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Duration decodes TOML strings such as "2s" or "150ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no kymera.toml exists.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			MaxDocuments:   256,
			RequestTimeout: Duration{2 * time.Second},
			MaxDiagnostics: 200,
		},
		Completion: CompletionConfig{
			MaxItems: 100,
			Keywords: true,
		},
		Trace: TraceConfig{
			Level:  "off",
			Mode:   "stream",
			Format: "auto",
			Output: "-",
		},
	}
}

// Load decodes path over the defaults. Keys the file leaves out keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	// an explicit zero disables the limit, so only reject negatives
	for _, field := range []struct {
		key   []string
		value int
	}{
		{[]string{"engine", "max_documents"}, cfg.Engine.MaxDocuments},
		{[]string{"engine", "max_diagnostics"}, cfg.Engine.MaxDiagnostics},
		{[]string{"completion", "max_items"}, cfg.Completion.MaxItems},
	} {
		if meta.IsDefined(field.key...) && field.value < 0 {
			return Config{}, fmt.Errorf("%s: [%s].%s must not be negative", path, field.key[0], field.key[1])
		}
	}
	if meta.IsDefined("engine", "request_timeout") && cfg.Engine.RequestTimeout.Duration < 0 {
		return Config{}, fmt.Errorf("%s: [engine].request_timeout must not be negative", path)
	}
	return cfg, nil
}

// Find walks up from startDir to locate kymera.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest kymera.toml above startDir, or the defaults
// when there is none. The returned path is empty in that case.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}
