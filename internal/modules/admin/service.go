package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"veriflow/internal/domain"
	"veriflow/internal/pkg/mailer"
	"veriflow/internal/pkg/metrics"
)

type Service struct {
	users         UserRepositoryInterface
	documents     DocumentRecordReader
	verifications VerificationRecordReader
	notifications NotificationCleaner
	events        EventPublisher
	log           *zap.Logger
}

func NewService(
	users UserRepositoryInterface,
	documents DocumentRecordReader,
	verifications VerificationRecordReader,
	notifications NotificationCleaner,
	events EventPublisher,
	log *zap.Logger,
) *Service {
	return &Service{
		users:         users,
		documents:     documents,
		verifications: verifications,
		notifications: notifications,
		events:        events,
		log:           log,
	}
}

// DecideKYC applies an admin KYC decision to an account. Only a verified
// decision unlocks login; hold and rejected keep the account out while
// stating different things to the user.
func (s *Service) DecideKYC(ctx context.Context, adminID, userID int64, req DecideKYCRequest) (*domain.User, error) {
	status := domain.KYCStatus(req.Status)
	if !status.Valid() || status == domain.KYCNotStarted {
		return nil, ErrInvalidKYCStatus
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verified := status == domain.KYCVerified
	if err := s.users.UpdateKYCStatus(ctx, userID, status, verified); err != nil {
		return nil, err
	}
	user.KYCStatus = status
	user.IsVerified = verified

	metrics.KYCDecisions.WithLabelValues(string(status)).Inc()
	s.log.Info("kyc decision applied",
		zap.Int64("admin_id", adminID),
		zap.Int64("user_id", userID),
		zap.String("status", string(status)))

	s.events.Publish(domain.Event{
		Type:      domain.EventUserVerificationAdmin,
		Broadcast: domain.BroadcastAdmins,
		Message:   fmt.Sprintf("KYC decision for %s %s: %s", user.FirstName, user.LastName, status),
		Payload:   map[string]any{"user_id": userID, "status": status},
	})
	s.events.Publish(domain.Event{
		Type:         domain.EventVerificationStatus,
		TargetUserID: userID,
		Message:      kycMessage(status),
		Payload:      map[string]any{"status": status, "notes": req.Notes},
		Email: &domain.EmailRequest{
			To:       user.Email,
			Template: kycTemplate(status),
			Context:  map[string]string{"first_name": user.FirstName},
		},
	})

	return user, nil
}

// UpdateRole changes an account's role. Admins cannot touch their own role,
// so the last admin can never lock everyone out by accident.
func (s *Service) UpdateRole(ctx context.Context, adminID, userID int64, req UpdateRoleRequest) (*domain.User, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if adminID == userID {
		return nil, ErrSelfDemotion
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.events.Publish(domain.Event{
		Type:         domain.EventRoleChanged,
		TargetUserID: userID,
		Message:      fmt.Sprintf("Your role has been changed to %s", role),
		Payload:      map[string]any{"role": role},
		Email: &domain.EmailRequest{
			To:       user.Email,
			Template: mailer.TemplateRoleChanged,
			Context:  map[string]string{"first_name": user.FirstName, "role": string(role)},
		},
	})

	return user, nil
}

// DeleteUser removes an account and its dependent data.
func (s *Service) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if adminID == userID {
		return ErrSelfDemotion
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.documents.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.notifications.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.events.Publish(domain.Event{
		Type:      domain.EventUserDeleted,
		Broadcast: domain.BroadcastAdmins,
		Message:   fmt.Sprintf("User deleted: %s", user.Email),
		Payload:   map[string]any{"user_id": userID},
		Email: &domain.EmailRequest{
			To:       user.Email,
			Template: mailer.TemplateAccountDeleted,
			Context:  map[string]string{"first_name": user.FirstName},
		},
	})

	return nil
}

func (s *Service) ListUsers(ctx context.Context, role, kycStatus string, limit, offset int) ([]domain.User, int64, error) {
	users, total, err := s.users.List(ctx, role, kycStatus, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	byKYC, err := s.users.CountByKYCStatus(ctx)
	if err != nil {
		return nil, err
	}
	docStats, err := s.documents.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	verStats, err := s.verifications.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Statistics{
		UsersByKYCStatus:    byKYC,
		DocumentRecords:     docStats,
		VerificationRecords: verStats,
		GeneratedAt:         time.Now(),
	}, nil
}

func (s *Service) getUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func kycMessage(status domain.KYCStatus) string {
	switch status {
	case domain.KYCVerified:
		return "Your account has been verified. You can now log in."
	case domain.KYCRejected:
		return "Your verification was rejected. Please contact support."
	case domain.KYCHold:
		return "Your account has been placed on hold."
	default:
		return "Your verification is under review."
	}
}

func kycTemplate(status domain.KYCStatus) string {
	switch status {
	case domain.KYCVerified:
		return mailer.TemplateKYCVerified
	case domain.KYCRejected:
		return mailer.TemplateKYCRejected
	case domain.KYCHold:
		return mailer.TemplateKYCHold
	default:
		return mailer.TemplateKYCPending
	}
}
