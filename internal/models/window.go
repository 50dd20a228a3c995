package models

import "time"

// FeatureVector is the flat name → value mapping computed for one accepted
// window. Keys follow "{channel}_{stat}" for per-channel statistics and
// "corr_{a}_{b}" for cross-channel correlations.
type FeatureVector map[string]float64

// Window is a half-open time interval [TStart, TEnd) over one subject's
// samples. Windows are generated during a run and never mutated.
type Window struct {
	SubjectID int       `json:"subjectId"`
	TStart    time.Time `json:"tStart"`
	TEnd      time.Time `json:"tEnd"`
}

// LabeledWindow is the persisted record for one accepted window
type LabeledWindow struct {
	WindowID  int64         `json:"windowId" db:"window_id"`
	SubjectID int           `json:"subjectId" db:"subject_id"`
	TStart    time.Time     `json:"tStart" db:"t_start"`
	TEnd      time.Time     `json:"tEnd" db:"t_end"`
	Label     *string       `json:"label,omitempty" db:"label"`
	Features  FeatureVector `json:"features" db:"features"`
}

// WindowFilter represents filter parameters for querying persisted windows
type WindowFilter struct {
	SubjectID int    `form:"subjectId"`  // 0 = all subjects
	StartTime int64  `form:"startTime"`  // Unix timestamp in seconds, 0 = open
	EndTime   int64  `form:"endTime"`    // Unix timestamp in seconds, 0 = open
	Label     string `form:"label"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// WindowsResponse represents a paginated response of labeled windows
type WindowsResponse struct {
	Data       []LabeledWindow `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// LabelCount is one row of the per-label window distribution
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// SubjectCount is one row of the per-subject window distribution
type SubjectCount struct {
	SubjectID int   `json:"subjectId"`
	Count     int64 `json:"count"`
}

// WindowSummary aggregates the persisted windows table for the query API
type WindowSummary struct {
	TotalWindows int64          `json:"totalWindows"`
	ByLabel      []LabelCount   `json:"byLabel"`
	BySubject    []SubjectCount `json:"bySubject"`
	GeneratedAt  string         `json:"generatedAt"`
}

// RunSummary reports the outcome of one windowing run
type RunSummary struct {
	RunID         string  `json:"runId"`
	Windows       int     `json:"windows"`
	Subjects      int     `json:"subjects"`
	WindowSeconds float64 `json:"windowSeconds"`
	StrideSeconds float64 `json:"strideSeconds"`
}
