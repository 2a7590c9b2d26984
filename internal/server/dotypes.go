package server

import (
	"gorm.io/gorm"
)

type RunDO struct {
	gorm.Model
	RunID string `gorm:"uniqueIndex;type:VARCHAR(64)"`
}

type MetricSampleDO struct {
	gorm.Model
	RunID    string `gorm:"uniqueIndex:unique_sample;type:VARCHAR(64)"`
	Database string `gorm:"uniqueIndex:unique_sample;type:VARCHAR(64)"`
	Category string `gorm:"uniqueIndex:unique_sample;type:VARCHAR(32)"`
	Metric   string `gorm:"uniqueIndex:unique_sample;type:VARCHAR(128)"`
	Value    float64
	Unit     string `gorm:"type:VARCHAR(32)"`
	Weight   float64
}

type CategoryScoreDO struct {
	gorm.Model
	RunID    string `gorm:"uniqueIndex:unique_category;type:VARCHAR(64)"`
	Database string `gorm:"uniqueIndex:unique_category;type:VARCHAR(64)"`
	Category string `gorm:"uniqueIndex:unique_category;type:VARCHAR(32)"`
	Score    float64
}

type FinalScoreDO struct {
	gorm.Model
	RunID      string `gorm:"uniqueIndex:unique_final;type:VARCHAR(64)"`
	Database   string `gorm:"uniqueIndex:unique_final;type:VARCHAR(64)"`
	TotalScore float64
	Ranking    int
	Tier       string `gorm:"type:VARCHAR(16)"`
}
