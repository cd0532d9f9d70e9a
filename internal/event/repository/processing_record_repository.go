package repository

import (
	"errors"
	"time"

	eventdomain "mailpilot-backend/internal/event/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// processingRecordRepository implements ProcessingRecordRepository using GORM
type processingRecordRepository struct {
	db *gorm.DB
}

// NewProcessingRecordRepository creates a new instance of processingRecordRepository
func NewProcessingRecordRepository(db *gorm.DB) ProcessingRecordRepository {
	return &processingRecordRepository{db: db}
}

func (r *processingRecordRepository) GetByThread(userID, threadID string) (*eventdomain.ProcessingRecord, error) {
	var record eventdomain.ProcessingRecord
	err := r.db.Where("user_id = ? AND thread_id = ?", userID, threadID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *processingRecordRepository) EnsureRecord(userID, threadID, latestMessageID string, lastMessageAt time.Time) (*eventdomain.ProcessingRecord, error) {
	now := time.Now()
	record := eventdomain.ProcessingRecord{
		ID:              uuid.New().String(),
		UserID:          userID,
		ThreadID:        threadID,
		LatestMessageID: latestMessageID,
		LastMessageAt:   lastMessageAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result := r.db.Where("user_id = ? AND thread_id = ?", userID, threadID).FirstOrCreate(&record)
	if result.Error != nil {
		return nil, result.Error
	}

	// An existing unprocessed row tracks the newest message it has seen.
	if result.RowsAffected == 0 && record.ProcessedAt == nil && record.LatestMessageID != latestMessageID {
		record.LatestMessageID = latestMessageID
		record.LastMessageAt = lastMessageAt
		record.UpdatedAt = now
		if err := r.db.Save(&record).Error; err != nil {
			return nil, err
		}
	}

	return &record, nil
}

func (r *processingRecordRepository) MarkProcessed(id, reason string, createdEventID *string) error {
	now := time.Now()
	return r.db.Model(&eventdomain.ProcessingRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_at":     now,
			"processed_reason": reason,
			"created_event_id": createdEventID,
			"updated_at":       now,
		}).Error
}
