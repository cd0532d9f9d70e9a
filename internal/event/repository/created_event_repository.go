package repository

import (
	"errors"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// createdEventRepository implements CreatedEventRepository using GORM
type createdEventRepository struct {
	db *gorm.DB
}

// NewCreatedEventRepository creates a new instance of createdEventRepository
func NewCreatedEventRepository(db *gorm.DB) CreatedEventRepository {
	return &createdEventRepository{db: db}
}

func (r *createdEventRepository) GetByThread(userID, threadID string) (*eventdomain.CreatedEvent, error) {
	var event eventdomain.CreatedEvent
	err := r.db.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// InsertIfAbsent uses FirstOrCreate against the composite unique index so the
// check and the insert are a single conditional write. RowsAffected == 0 means
// another run already created the row.
func (r *createdEventRepository) InsertIfAbsent(event *eventdomain.CreatedEvent) (bool, *eventdomain.CreatedEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	result := r.db.Where("user_id = ? AND thread_id = ?", event.UserID, event.ThreadID).FirstOrCreate(event)
	if result.Error != nil {
		return false, nil, result.Error
	}

	return result.RowsAffected > 0, event, nil
}
