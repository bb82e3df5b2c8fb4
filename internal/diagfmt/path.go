package diagfmt

import (
	"path/filepath"
	"strings"

	"kymera/internal/source"
)

// autoPathLimit is the length above which PathModeAuto shortens absolute paths.
const autoPathLimit = 40

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	if f == nil {
		return "<unknown>"
	}
	path := f.Path
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil && f.Flags&source.FileVirtual == 0 {
			return filepath.ToSlash(abs)
		}
		return path
	case PathModeRelative:
		if baseDir == "" {
			return path
		}
		if rel, err := filepath.Rel(filepath.FromSlash(baseDir), filepath.FromSlash(path)); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
		return path
	case PathModeBasename:
		return source.BaseName(path)
	default:
		if filepath.IsAbs(filepath.FromSlash(path)) && len(path) > autoPathLimit {
			return source.BaseName(path)
		}
		return path
	}
}
