package audit

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntries(ctx context.Context, limit, offset int) ([]Entry, error)
	GetEntriesByOutcome(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error)
	CreateLogEntry(ctx context.Context, entry *LogEntry) error
	GetLogEntries(ctx context.Context, limit, offset int) ([]LogEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateEntry(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) GetEntries(ctx context.Context, limit, offset int) ([]Entry, error) {
	var entries []Entry
	result := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}

func (r *auditRepository) GetEntriesByOutcome(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error) {
	var entries []Entry
	result := r.db.WithContext(ctx).Where("outcome = ?", outcome).Order("id DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}

func (r *auditRepository) CreateLogEntry(ctx context.Context, entry *LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) GetLogEntries(ctx context.Context, limit, offset int) ([]LogEntry, error) {
	var entries []LogEntry
	result := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}
