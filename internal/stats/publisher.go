package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepforge/interview-platform/internal/common"
	"github.com/prepforge/interview-platform/internal/store/rabbitmq"
)

// QueuePublisher persists an export job and hands its id to the queue. The
// worker does the actual sheet append with bounded retries.
type QueuePublisher struct {
	db  *gorm.DB
	pub *rabbitmq.Publisher
}

func NewQueuePublisher(db *gorm.DB, pub *rabbitmq.Publisher) *QueuePublisher {
	return &QueuePublisher{db: db, pub: pub}
}

func (q *QueuePublisher) Record(ctx context.Context, row Row) error {
	id, err := common.NewULID()
	if err != nil {
		return err
	}
	job := &ExportJob{
		ID:          id,
		InterviewID: row.InterviewID,
		Status:      JobQueued,
		Row:         RowJSON(row),
	}
	if err := q.db.WithContext(ctx).Create(job).Error; err != nil {
		return err
	}
	return q.pub.PublishJob(ctx, job.ID)
}
