package repository

import (
	"context"
	"errors"

	"veriflow/internal/domain"

	"gorm.io/gorm"
)

// ErrDuplicateDocumentNumber signals a unique-index collision on
// document_number so callers can re-read and merge instead of failing.
var ErrDuplicateDocumentNumber = errors.New("document number already exists")

type VerificationRecordRepository struct {
	db *gorm.DB
}

func NewVerificationRecordRepository(db *gorm.DB) *VerificationRecordRepository {
	return &VerificationRecordRepository{db: db}
}

func (r *VerificationRecordRepository) Create(ctx context.Context, rec *domain.VerificationRecord) error {
	err := r.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateDocumentNumber
	}
	return err
}

func (r *VerificationRecordRepository) GetByDocumentNumber(ctx context.Context, number string) (*domain.VerificationRecord, error) {
	var rec domain.VerificationRecord
	tx := r.db.WithContext(ctx).Where("document_number = ?", number).First(&rec)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &rec, nil
}

func (r *VerificationRecordRepository) Update(ctx context.Context, rec *domain.VerificationRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *VerificationRecordRepository) Delete(ctx context.Context, number string) error {
	return r.db.WithContext(ctx).
		Where("document_number = ?", number).
		Delete(&domain.VerificationRecord{}).Error
}

func (r *VerificationRecordRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.VerificationRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.VerificationRecord{})
	if status != "" {
		q = q.Where("overall_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []domain.VerificationRecord
	if err := q.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *VerificationRecordRepository) CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	type row struct {
		OverallStatus string
		N             int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.VerificationRecord{}).
		Select("overall_status, COUNT(*) AS n").
		Group("overall_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.VerificationStatus]int64, len(rows))
	for _, r := range rows {
		counts[domain.VerificationStatus(r.OverallStatus)] = r.N
	}
	return counts, nil
}
