// Package db opens the run-history store and persists refactor runs.
// File DSNs use the pure Go SQLite driver; libsql:// and http(s)://
// DSNs go through the libsql connector for remote databases.
package db

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	glebarez "github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/datatypes"
	sqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/termfx/refx/internal/model"
	"github.com/termfx/refx/models"
)

// Connect opens the history database and runs migrations. Remote DSNs
// read REFX_LIBSQL_AUTH_TOKEN for authentication.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if !isURL(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		token := os.Getenv("REFX_LIBSQL_AUTH_TOKEN")
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("creating libsql connector: %w", err)
		}

		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = glebarez.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("connecting to history store: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrating history store: %w", err)
	}
	return gdb, nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "libsql://")
}

// Migrate creates or updates the history tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Run{},
		&models.FileResult{},
		&models.RuleTiming{},
	)
}

// SaveRun persists one run with its file results and rule timings.
func SaveRun(gdb *gorm.DB, cfg *model.Config, result *model.Result, ruleNames []string) (*models.Run, error) {
	rulesJSON, err := json.Marshal(ruleNames)
	if err != nil {
		return nil, err
	}

	run := &models.Run{
		Version:    model.Version,
		DryRun:     cfg.DryRun,
		Verify:     cfg.Verify,
		Workers:    cfg.Workers,
		MaxPasses:  cfg.MaxPasses,
		Rules:      datatypes.JSON(rulesJSON),
		Refactored: result.Refactored(),
		Unchanged:  result.Unchanged(),
		Failed:     result.Failed(),
		ElapsedMS:  result.Elapsed.Milliseconds(),
	}
	if err := gdb.Create(run).Error; err != nil {
		return nil, err
	}

	files := make([]models.FileResult, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		stats, err := json.Marshal(models.FileStats{
			Passes:     o.Passes,
			DurationMS: float64(o.Duration) / float64(time.Millisecond),
		})
		if err != nil {
			return nil, err
		}
		fr := models.FileResult{
			RunID:        run.ID,
			Path:         o.Path,
			Status:       string(o.Status),
			OriginalSHA1: o.OriginalSHA1,
			ModifiedSHA1: o.ModifiedSHA1,
			Stats:        datatypes.JSON(stats),
		}
		if o.Err != nil {
			fr.ErrorCode = string(model.CodeOf(o.Err))
			fr.Error = o.Err.Error()
		}
		files = append(files, fr)
	}
	if len(files) > 0 {
		if err := gdb.CreateInBatches(files, 200).Error; err != nil {
			return nil, err
		}
	}

	timings := make([]models.RuleTiming, 0, len(result.Timings))
	for _, t := range result.Timings {
		status := models.TimingUnchanged
		if t.Modified {
			status = models.TimingModified
		}
		timings = append(timings, models.RuleTiming{
			RunID:  run.ID,
			Rule:   t.Rule,
			TimeMS: float64(t.Duration) / float64(time.Millisecond),
			Status: status,
		})
	}
	if len(timings) > 0 {
		if err := gdb.CreateInBatches(timings, 500).Error; err != nil {
			return nil, err
		}
	}
	return run, nil
}

// RecentRuns returns the latest runs, newest first, with their rule
// timings preloaded.
func RecentRuns(gdb *gorm.DB, limit int) ([]models.Run, error) {
	var runs []models.Run
	err := gdb.Preload("Timings").Order("id desc").Limit(limit).Find(&runs).Error
	return runs, err
}
