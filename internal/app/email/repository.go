package email

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("email record not found")

type Repository interface {
	Insert(ctx context.Context, record *Record) error
	Get(ctx context.Context, recordId string) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	ListPendingDelivery(ctx context.Context, limit int) ([]Record, error)
	MarkDelivered(ctx context.Context, recordId string) error
	RecordDeliveryFailure(ctx context.Context, recordId string, cause error, maxAttempts int) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Insert stores record in its own transaction, assigning an id when missing.
func (r *gormRepository) Insert(ctx context.Context, record *Record) error {
	if record.RecordId == "" {
		record.RecordId = uuid.NewString()
	}
	if record.DeliveryState == "" {
		record.DeliveryState = DeliveryPending
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
}

func (r *gormRepository) Get(ctx context.Context, recordId string) (Record, error) {
	var record Record
	err := r.db.WithContext(ctx).Where("record_id = ?", recordId).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, ErrNotFound
	}
	return record, err
}

func (r *gormRepository) List(ctx context.Context, limit, offset int) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *gormRepository) ListPendingDelivery(ctx context.Context, limit int) ([]Record, error) {
	var records []Record
	err := r.db.WithContext(ctx).
		Where("delivery_state = ?", DeliveryPending).
		Order("id ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *gormRepository) MarkDelivered(ctx context.Context, recordId string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&Record{}).
		Where("record_id = ?", recordId).
		Updates(map[string]any{
			"delivery_state":      DeliveryDelivered,
			"delivered_at":        now,
			"last_delivery_error": "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordDeliveryFailure bumps the attempt counter; the record is given up on
// once maxAttempts is reached.
func (r *gormRepository) RecordDeliveryFailure(ctx context.Context, recordId string, cause error, maxAttempts int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record Record
		if err := tx.Where("record_id = ?", recordId).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		attempts := record.DeliveryAttempts + 1
		state := record.DeliveryState
		if attempts >= maxAttempts {
			state = DeliveryFailed
		}

		message := ""
		if cause != nil {
			message = cause.Error()
		}

		return tx.Model(&Record{}).
			Where("id = ?", record.ID).
			Updates(map[string]any{
				"delivery_attempts":   attempts,
				"delivery_state":      state,
				"last_delivery_error": message,
			}).Error
	})
}
