package repository

import (
	"context"
	"strings"
	"time"

	"veriflow/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	Phone        *string    `gorm:"column:phone"`
	Role         string     `gorm:"column:role"`
	IsVerified   bool       `gorm:"column:is_verified"`
	KYCStatus    string     `gorm:"column:kyc_status"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone string
	if m.Phone != nil {
		phone = *m.Phone
	}

	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Phone:        phone,
		Role:         domain.UserRole(m.Role),
		IsVerified:   m.IsVerified,
		KYCStatus:    domain.KYCStatus(m.KYCStatus),
		LastLogin:    m.LastLogin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	var phone *string
	if u.Phone != "" {
		v := u.Phone
		phone = &v
	}

	return userModel{
		ID:           u.ID,
		Email:        email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        phone,
		Role:         string(u.Role),
		IsVerified:   u.IsVerified,
		KYCStatus:    string(u.KYCStatus),
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *UserRepository) UpdateKYCStatus(ctx context.Context, id int64, status domain.KYCStatus, verified bool) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"kyc_status":  string(status),
			"is_verified": verified,
		}).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Update("role", string(role)).Error
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&userModel{}, id).Error
}

// List returns users filtered by role and/or KYC status; empty filters match all.
func (r *UserRepository) List(ctx context.Context, role, kycStatus string, limit, offset int) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&userModel{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if kycStatus != "" {
		q = q.Where("kyc_status = ?", kycStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []userModel
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, *toDomainUser(m))
	}
	return users, total, nil
}

func (r *UserRepository) CountByKYCStatus(ctx context.Context) (map[domain.KYCStatus]int64, error) {
	type row struct {
		KYCStatus string
		N         int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Select("kyc_status, COUNT(*) AS n").
		Group("kyc_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.KYCStatus]int64, len(rows))
	for _, r := range rows {
		counts[domain.KYCStatus(r.KYCStatus)] = r.N
	}
	return counts, nil
}
