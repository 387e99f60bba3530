package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved directory layout around the executable
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
}

// GetPaths resolves the directory layout relative to the executable.
// Falls back to the working directory when the executable path cannot be
// determined (e.g. under go test).
func GetPaths() (*Paths, error) {
	base, err := executableDir()
	if err != nil {
		return nil, err
	}
	return PathsFrom(base), nil
}

// PathsFrom builds the standard layout under the given base directory
func PathsFrom(base string) *Paths {
	return &Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		ReportsDir:    filepath.Join(base, "reports"),
		LogsDir:       filepath.Join(base, "logs"),
	}
}

// EnsureDirectories creates the data, reports, and logs directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err == nil {
		if resolved, rerr := filepath.EvalSymlinks(exe); rerr == nil {
			exe = resolved
		}
		return filepath.Dir(exe), nil
	}

	wd, werr := os.Getwd()
	if werr != nil {
		return "", fmt.Errorf("cannot determine executable or working directory: %w", werr)
	}
	return wd, nil
}

// resolvePaths fills in the executable directory when unset
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir != "" {
		return nil
	}
	base, err := executableDir()
	if err != nil {
		return err
	}
	c.Paths.ExecutableDir = base
	return nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	return c.resolveDir(c.Paths.DataDir)
}

// GetReportsDir returns the resolved reports directory path
func (c *Config) GetReportsDir() string {
	return c.resolveDir(c.Paths.ReportsDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return c.resolveDir(c.Paths.LogsDir)
}

func (c *Config) resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Paths.ExecutableDir, dir)
}
