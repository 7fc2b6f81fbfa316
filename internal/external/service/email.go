package service

import (
	"context"
	"errors"
	"time"

	"bikeshare/internal/external/repository"
	"bikeshare/internal/external/validator"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
	"bikeshare/pkg/sanitizer"
)

type EmailService interface {
	Send(ctx context.Context, req *model.EmailRequest) (*model.Email, error)
}

type emailService struct {
	repo      repository.EmailRepository
	sender    Sender
	validator *validator.ExternalValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewEmailService(repo repository.EmailRepository, sender Sender, validator *validator.ExternalValidator, cfg *config.Config) EmailService {
	return &emailService{
		repo:      repo,
		sender:    sender,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Send stores the e-mail before delivering it, so a failed delivery leaves a
// record with enviado=false.
func (s *emailService) Send(ctx context.Context, req *model.EmailRequest) (*model.Email, error) {
	req.To = sanitizer.NormalizeEmail(req.To)
	req.Subject = sanitizer.TrimAndNormalize(req.Subject)

	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make(map[string]any, len(validationErrs))
			for _, ve := range validationErrs {
				details[ve.Field] = ve.Message
			}
			return nil, apperrors.Validation("Invalid email request", details)
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	email := &model.Email{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.repo.Create(ctx, email); err != nil {
		return nil, apperrors.Internal("Failed to store email", err)
	}

	if err := s.sender.Send(ctx, email); err != nil {
		s.cfg.Log.Error("Email delivery failed", "id", email.ID, "to", email.To, "error", err)
		return nil, apperrors.Unavailable("email").WithCause(err)
	}

	sentAt := s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.MarkSent(ctx, email.ID, sentAt); err != nil {
		s.cfg.Log.Warn("Failed to mark email as sent", "id", email.ID, "error", err)
	}
	email.Sent = true
	email.SentAt = &sentAt

	s.cfg.Log.Info("Email sent", "id", email.ID, "to", email.To, "subject", email.Subject)
	return email, nil
}
