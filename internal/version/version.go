package version

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Version information for the kymera CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

const Tagline = "incremental answers for every keystroke"

// Info is the build metadata selected for display.
type Info struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// Fields selects the optional parts of Info.
type Fields struct {
	Hash, Message, Date bool
}

func (f Fields) any() bool { return f.Hash || f.Message || f.Date }

// Collect reads the build variables. Unset selected fields read "unknown".
func Collect(f Fields) Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	info := Info{Tool: "kymera", Version: v, Tagline: Tagline}
	if f.Hash {
		info.GitCommit = valueOrUnknown(GitCommit)
	}
	if f.Message {
		info.GitMessage = valueOrUnknown(GitMessage)
	}
	if f.Date {
		info.BuildDate = valueOrUnknown(BuildDate)
	}
	return info
}

// Pretty writes info for a terminal. The version parts are colored when
// colored is set.
func Pretty(out io.Writer, info Info, f Fields, colored bool) {
	fmt.Fprintf(out, "%s %s: %s\n", info.Tool, colorize(info.Version, colored), info.Tagline)
	if f.Hash {
		fmt.Fprintf(out, "commit:  %s\n", info.GitCommit)
	}
	if f.Message {
		fmt.Fprintf(out, "message: %s\n", info.GitMessage)
	}
	if f.Date {
		fmt.Fprintf(out, "built:   %s\n", info.BuildDate)
	}
	if !f.any() {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
}

func JSON(out io.Writer, info Info) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// colorize paints major, minor and patch of a semantic version.
func colorize(v string, colored bool) string {
	if !colored {
		return v
	}
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	palette := []*color.Color{
		color.New(color.FgYellow, color.Bold),
		color.New(color.FgGreen, color.Bold),
		color.New(color.FgBlue, color.Bold),
	}
	for i, c := range palette {
		c.EnableColor()
		parts[i] = c.Sprint(parts[i])
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
