package interview

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateWithFirstQuestion inserts the interview row and its opening
// interviewer message in one transaction, so a failed insert never leaves an
// interview with an empty transcript.
func (r *Repo) CreateWithFirstQuestion(ctx context.Context, iv *Interview, firstQuestion string) (*Message, error) {
	msg := &Message{Role: RoleInterviewer, Content: firstQuestion}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(iv).Error; err != nil {
			return err
		}
		msg.InterviewID = iv.ID
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *Repo) GetByID(ctx context.Context, id uint64) (*Interview, error) {
	var iv Interview
	if err := r.db.WithContext(ctx).First(&iv, id).Error; err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Interview, error) {
	var out []Interview
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListByUserAndSubject(ctx context.Context, userID, subjectID uint64) ([]Interview, error) {
	var out []Interview
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessagesAsc returns the full transcript in creation order.
func (r *Repo) ListMessagesAsc(ctx context.Context, interviewID uint64) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// FinishExchange attaches feedback to the candidate message and appends the
// next interviewer question atomically.
func (r *Repo) FinishExchange(ctx context.Context, candidateID uint64, fb *FeedbackJSON, next *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Message{}).
			Where("id = ?", candidateID).
			Update("feedback", fb).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

// MarkCompleted transitions in_progress -> completed. The status guard keeps
// a concurrent duplicate call from overwriting an existing summary.
func (r *Repo) MarkCompleted(ctx context.Context, id uint64, summary *SummaryJSON, score int, completedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&Interview{}).
		Where("id = ? AND status = ?", id, StatusInProgress).
		Updates(map[string]any{
			"status":        StatusCompleted,
			"summary":       summary,
			"overall_score": score,
			"completed_at":  completedAt,
		}).Error
}

func (r *Repo) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListMaterials(ctx context.Context, userID, subjectID uint64) ([]models.StudyMaterial, error) {
	var out []models.StudyMaterial
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) GetSubject(ctx context.Context, id uint64) (*models.Subject, error) {
	var s models.Subject
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
