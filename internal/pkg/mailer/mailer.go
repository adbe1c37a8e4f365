package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Mailer delivers transactional email. Delivery is best-effort everywhere it
// is used: callers log errors and move on.
type Mailer interface {
	Send(ctx context.Context, to, template string, data map[string]string) error
}

// Template kinds understood by the mailers.
const (
	TemplateKYCVerified    = "kyc_verified"
	TemplateKYCRejected    = "kyc_rejected"
	TemplateKYCHold        = "kyc_hold"
	TemplateKYCPending     = "kyc_pending"
	TemplateRoleChanged    = "role_changed"
	TemplateAccountDeleted = "account_deleted"
)

type SESMailer struct {
	client *ses.Client
	from   string
	log    *zap.Logger
}

func NewSES(ctx context.Context, region, from string, log *zap.Logger) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from, log: log}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, template string, data map[string]string) error {
	subject, body := render(template, data)

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	m.log.Info("email sent", zap.String("to", to), zap.String("template", template))
	return nil
}

func render(template string, data map[string]string) (subject, body string) {
	name := data["first_name"]
	if name == "" {
		name = "there"
	}
	switch template {
	case TemplateKYCVerified:
		return "Your identity verification is approved",
			fmt.Sprintf("Hi %s,\n\nYour KYC verification has been approved. You can now log in to your dashboard.\n", name)
	case TemplateKYCRejected:
		return "Your identity verification was rejected",
			fmt.Sprintf("Hi %s,\n\nYour KYC verification was rejected. Please contact support for details.\n", name)
	case TemplateKYCHold:
		return "Your identity verification is on hold",
			fmt.Sprintf("Hi %s,\n\nYour account verification is on hold. Please check your email for further instructions or contact support.\n", name)
	case TemplateKYCPending:
		return "Your identity verification is under review",
			fmt.Sprintf("Hi %s,\n\nYour documents are under review. We will notify you once a decision is made.\n", name)
	case TemplateRoleChanged:
		return "Your account role has changed",
			fmt.Sprintf("Hi %s,\n\nYour account role has been updated to %s.\n", name, data["role"])
	case TemplateAccountDeleted:
		return "Your account has been deleted",
			fmt.Sprintf("Hi %s,\n\nYour account has been deleted by an administrator.\n", name)
	}
	return "Notification", fmt.Sprintf("Hi %s,\n\nThere is an update on your account.\n", name)
}

// Noop is used when SES is not configured (local development, tests).
type Noop struct{}

func (Noop) Send(context.Context, string, string, map[string]string) error { return nil }
