package repository

import (
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run history keeps only the most recent entries.
const runLogRetention = 50

// RunLogRepository stores the trailing history of processing runs.
type RunLogRepository interface {
	Append(entry *eventdomain.RunLog) error
	Recent(limit int) ([]*eventdomain.RunLog, error)
}

// runLogRepository implements RunLogRepository using GORM
type runLogRepository struct {
	db *gorm.DB
}

// NewRunLogRepository creates a new instance of runLogRepository
func NewRunLogRepository(db *gorm.DB) RunLogRepository {
	return &runLogRepository{db: db}
}

func (r *runLogRepository) Append(entry *eventdomain.RunLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := r.db.Create(entry).Error; err != nil {
		return err
	}

	// Trim entries beyond the retention window.
	var cutoff eventdomain.RunLog
	err := r.db.Order("created_at DESC").Offset(runLogRetention - 1).First(&cutoff).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.db.Where("created_at < ?", cutoff.CreatedAt).Delete(&eventdomain.RunLog{}).Error
}

func (r *runLogRepository) Recent(limit int) ([]*eventdomain.RunLog, error) {
	if limit <= 0 || limit > runLogRetention {
		limit = runLogRetention
	}
	var logs []*eventdomain.RunLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
