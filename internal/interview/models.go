package interview

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prepforge/interview-platform/internal/ai"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	RoleInterviewer = ai.RoleInterviewer
	RoleCandidate   = ai.RoleCandidate
)

type Interview struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64       `gorm:"index;not null" json:"user_id"`
	SubjectID    *uint64      `gorm:"index" json:"subject_id,omitempty"`
	Title        string       `gorm:"type:varchar(255);not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	Link         string       `gorm:"type:varchar(512)" json:"link,omitempty"`
	Provider     string       `gorm:"type:varchar(32);not null" json:"provider"`
	Status       string       `gorm:"type:varchar(16);index;not null;default:in_progress" json:"status"`
	OverallScore *int         `json:"overall_score,omitempty"`
	Summary      *SummaryJSON `gorm:"type:json" json:"summary,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

func (Interview) TableName() string { return "interviews" }

type Message struct {
	ID          uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	InterviewID uint64        `gorm:"index;not null" json:"interview_id"`
	Role        string        `gorm:"type:varchar(16);not null" json:"role"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	Feedback    *FeedbackJSON `gorm:"type:json" json:"feedback,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (Message) TableName() string { return "interview_messages" }

// FeedbackJSON stores ai.FeedbackData as a JSON column.
type FeedbackJSON ai.FeedbackData

func (f *FeedbackJSON) Scan(value any) error {
	return scanJSON(value, f)
}

func (f FeedbackJSON) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// SummaryJSON stores ai.SummaryData as a JSON column.
type SummaryJSON ai.SummaryData

func (s *SummaryJSON) Scan(value any) error {
	return scanJSON(value, s)
}

func (s SummaryJSON) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func scanJSON(value, dst any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}
