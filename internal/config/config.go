// Package config resolves the refx run configuration from environment
// variables and the project .refx.env file. Environment values beat
// file values; command-line flags are overlaid later by the CLI.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/termfx/refx/core"
	"github.com/termfx/refx/internal/model"
)

// DefaultDBPath is where run history lands unless REFX_DB or --db
// points elsewhere.
const DefaultDBPath = ".refx/history.db"

// Load discovers the project file starting at startDir and resolves
// the configuration from it plus the environment.
func Load(startDir string) (*model.Config, error) {
	path, err := FindFile(startDir)
	if err != nil {
		return nil, model.Wrap(model.ErrConfig, "locating "+FileName, err)
	}
	return load(path)
}

// LoadFile resolves the configuration using an explicit project file
// instead of discovery.
func LoadFile(path string) (*model.Config, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, model.Wrap(model.ErrConfig, "config file "+path, err)
	}
	return load(path)
}

func load(path string) (*model.Config, error) {
	values := map[string]string{}
	if path != "" {
		var err error
		values, err = godotenv.Read(path)
		if err != nil {
			return nil, model.Wrap(model.ErrConfig, "parsing "+path, err)
		}
	}

	cfg := &model.Config{
		MaxPasses: core.DefaultPassLimit,
		DBPath:    DefaultDBPath,
		History:   true,
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}

	if v := lookup("REFX_RULES"); v != "" {
		cfg.RuleFiles = splitList(v)
	}
	if v := lookup("REFX_EXCLUDE_RULES"); v != "" {
		cfg.ExcludeRules = splitList(v)
	}
	if v := lookup("REFX_INCLUDE"); v != "" {
		cfg.Include = splitList(v)
	}
	if v := lookup("REFX_EXCLUDE"); v != "" {
		cfg.Exclude = splitList(v)
	}
	if v := lookup("REFX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := lookup("REFX_MAX_PASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPasses = n
		}
	}
	if v := lookup("REFX_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := lookup("REFX_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.History = b
		}
	}
	if v := lookup("REFX_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verify = b
		}
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
