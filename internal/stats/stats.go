package stats

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Row is one completed-interview record destined for the stats sheet.
// Column order matches the sheet header.
type Row struct {
	InterviewID     uint64 `json:"interview_id"`
	StudentName     string `json:"student_name"`
	StudentEmail    string `json:"student_email"`
	ProjectTitle    string `json:"project_title"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	OverallScore    int    `json:"overall_score"`
	ResponseCount   int    `json:"response_count"`
	Strengths       string `json:"strengths"`
	Weaknesses      string `json:"weaknesses"`
	RevisionTopics  string `json:"revision_topics"`
}

// Values renders the row as a sheet line.
func (r Row) Values() []any {
	return []any{
		r.InterviewID,
		r.StudentName,
		r.StudentEmail,
		r.ProjectTitle,
		r.StartTime,
		r.EndTime,
		r.DurationMinutes,
		r.OverallScore,
		r.ResponseCount,
		r.Strengths,
		r.Weaknesses,
		r.RevisionTopics,
	}
}

// Header is the first sheet row.
var Header = []any{
	"Interview ID",
	"Student Name",
	"Student Email",
	"Project Title",
	"Start Time",
	"End Time",
	"Duration (mins)",
	"Overall Score",
	"Response Count",
	"Strengths",
	"Weaknesses",
	"Revision Topics",
}

// Recorder accepts stats rows. Implementations are best-effort: errors are
// for the caller to log, never to surface.
type Recorder interface {
	Record(ctx context.Context, row Row) error
}

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ExportJob is the durable record of one pending sheet append.
type ExportJob struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	InterviewID uint64    `gorm:"index;not null"`
	Status      JobStatus `gorm:"type:varchar(16);index;not null"`
	Attempts    int       `gorm:"not null;default:0"`

	Row RowJSON `gorm:"type:json;not null"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExportJob) TableName() string { return "stats_export_jobs" }

type RowJSON Row

func (r *RowJSON) Scan(value any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}

func (r RowJSON) Value() (driver.Value, error) {
	return json.Marshal(r)
}
