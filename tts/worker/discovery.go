package worker

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrScriptNotFound is returned when no candidate worker script exists.
var ErrScriptNotFound = errors.New("worker script not found")

// FindScript returns the worker script to launch. An explicit path wins;
// otherwise the search paths are probed in order and the first regular
// file is used. The probed paths are returned for error reporting.
func FindScript(explicit string, searchPaths []string) (string, []string, error) {
	if explicit != "" {
		p := absPath(explicit)
		if isFile(p) {
			return p, []string{p}, nil
		}
		return "", []string{p}, ErrScriptNotFound
	}

	exeDir := executableDir()
	cwd, _ := os.Getwd()

	tried := make([]string, 0, len(searchPaths))
	for _, candidate := range searchPaths {
		p := absPath(expandCandidate(candidate, exeDir, cwd))
		tried = append(tried, p)
		if isFile(p) {
			return p, tried, nil
		}
	}
	return "", tried, ErrScriptNotFound
}

// expandCandidate replaces ${exe} and ${cwd}; other variables come from
// the environment.
func expandCandidate(p, exeDir, cwd string) string {
	return filepath.Clean(os.Expand(p, func(key string) string {
		switch key {
		case "exe":
			return exeDir
		case "cwd":
			return cwd
		default:
			return os.Getenv(key)
		}
	}))
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
