// Package models defines the gorm models of the refx run-history store.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Rule attempt statuses stored in rule_timings.
const (
	TimingModified  = "modified"
	TimingUnchanged = "unchanged"
)

// Run is one invocation of the refactor command.
type Run struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	// Tool and run shape
	Version   string `gorm:"type:varchar(20)"`
	DryRun    bool   `gorm:"default:false"`
	Verify    bool   `gorm:"default:false"`
	Workers   int    `gorm:"default:0"`
	MaxPasses int    `gorm:"default:0"`

	// Effective rule names, in application order
	Rules datatypes.JSON `gorm:"type:jsonb"`

	// Outcome counters
	Refactored int `gorm:"default:0"`
	Unchanged  int `gorm:"default:0"`
	Failed     int `gorm:"default:0"`

	ElapsedMS int64 `gorm:"default:0"`

	// Relationships
	Files   []FileResult `gorm:"foreignKey:RunID"`
	Timings []RuleTiming `gorm:"foreignKey:RunID"`
}

// FileResult is the stored outcome for one file of a run.
type FileResult struct {
	ID    uint `gorm:"primaryKey"`
	RunID uint `gorm:"index;not null"`

	Path   string `gorm:"type:varchar(512);not null"`
	Status string `gorm:"type:varchar(20);not null"`

	// Error detail for failed files
	ErrorCode string `gorm:"type:varchar(32)"`
	Error     string `gorm:"type:text"`

	// Checksums of the content before and after rewriting
	OriginalSHA1 string `gorm:"type:varchar(40)"`
	ModifiedSHA1 string `gorm:"type:varchar(40)"`

	// Pass and timing detail
	Stats datatypes.JSON `gorm:"type:jsonb"`
}

// FileStats is the JSON payload of FileResult.Stats.
type FileStats struct {
	Passes     int     `json:"passes"`
	DurationMS float64 `json:"duration_ms"`
}

// RuleTiming is one recorded rule attempt.
type RuleTiming struct {
	ID    uint `gorm:"primaryKey"`
	RunID uint `gorm:"index;not null"`

	Rule   string  `gorm:"type:varchar(128);not null;index"`
	TimeMS float64 `gorm:"default:0"`
	Status string  `gorm:"type:varchar(10);not null"`
}

// TableName customizations for cleaner names
func (Run) TableName() string        { return "runs" }
func (FileResult) TableName() string { return "file_results" }
func (RuleTiming) TableName() string { return "rule_timings" }
