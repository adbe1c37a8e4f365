package repository

import (
	"context"

	"veriflow/internal/domain"

	"gorm.io/gorm"
)

type DocumentRecordRepository struct {
	db *gorm.DB
}

func NewDocumentRecordRepository(db *gorm.DB) *DocumentRecordRepository {
	return &DocumentRecordRepository{db: db}
}

func (r *DocumentRecordRepository) Create(ctx context.Context, rec *domain.DocumentRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *DocumentRecordRepository) GetByUserID(ctx context.Context, userID int64) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &rec, nil
}

func (r *DocumentRecordRepository) Update(ctx context.Context, rec *domain.DocumentRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *DocumentRecordRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.DocumentRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.DocumentRecord{})
	if status != "" {
		q = q.Where("overall_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []domain.DocumentRecord
	if err := q.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *DocumentRecordRepository) CountByStatus(ctx context.Context) (map[domain.RecordStatus]int64, error) {
	type row struct {
		OverallStatus string
		N             int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.DocumentRecord{}).
		Select("overall_status, COUNT(*) AS n").
		Group("overall_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.RecordStatus]int64, len(rows))
	for _, r := range rows {
		counts[domain.RecordStatus(r.OverallStatus)] = r.N
	}
	return counts, nil
}

func (r *DocumentRecordRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.DocumentRecord{}).Error
}
