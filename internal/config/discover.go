package config

import (
	"os"
	"path/filepath"
)

// FileName is the project configuration file discovered by walking up
// from the working directory.
const FileName = ".refx.env"

const maxSearchDepth = 25

var stopDirs = []string{".git", ".hg"}

// FindFile walks up from dir looking for a .refx.env file. Each level
// is checked for the file before its stop markers, so a repository
// root holding both .git and .refx.env is still found. The search ends
// after crossing a directory containing .git or .hg, at the user's
// home directory, or after 25 levels. An empty path means no file
// exists.
func FindFile(dir string) (string, error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	home, _ := os.UserHomeDir()

	for i := 0; i < maxSearchDepth; i++ {
		candidate := filepath.Join(cur, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if hasStopDir(cur) || cur == home {
			return "", nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", nil
		}
		cur = parent
	}
	return "", nil
}

func hasStopDir(dir string) bool {
	for _, name := range stopDirs {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
