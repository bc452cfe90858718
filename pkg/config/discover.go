package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DirName is the per-directory configuration directory.
const DirName = ".poolnav"

// FileName is the configuration file inside DirName.
const FileName = "config.yaml"

// Discover returns the config file to use: explicit when set, else the
// nearest .poolnav/config.yaml walking up from cwd, else the user config
// directory's poolnav/config.yaml. It returns "" when none exists.
func Discover(explicit string) string {
	if explicit != "" {
		return expandHome(explicit)
	}
	if dir, err := os.Getwd(); err == nil {
		if root, ok := findConfigRoot(dir); ok {
			return filepath.Join(root, DirName, FileName)
		}
	}
	if p := userConfigPath(); p != "" {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// DetectProjectDir returns the directory holding .poolnav, walking up from
// the current directory.
func DetectProjectDir() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	home, _ := os.UserHomeDir()
	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && dir == home) {
			return "", false
		}
		dir = parent
	}
}

// findConfigRoot walks up from dir looking for .poolnav/config.yaml.
func findConfigRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, DirName, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "poolnav", FileName)
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ResolvePath makes a path from the config file relative to the config
// file's project directory (the parent of .poolnav).
func ResolvePath(configPath, p string) string {
	if p == "" {
		return ""
	}
	p = expandHome(p)
	if filepath.IsAbs(p) || configPath == "" {
		return p
	}
	base := filepath.Dir(configPath)
	if filepath.Base(base) == DirName {
		base = filepath.Dir(base)
	}
	return filepath.Join(base, p)
}
