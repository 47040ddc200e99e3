package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"beauty-api/internal/email"
)

var ErrContactDisabled = errors.New("contact form is not configured")

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ContactService reenvía el formulario de contacto por correo.
type ContactService struct {
	logger *zap.Logger
	sender email.Sender
	now    func() time.Time
}

func NewContactService(logger *zap.Logger, sender email.Sender) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = email.NewDisabledSender("")
	}
	return &ContactService{logger: logger, sender: sender, now: time.Now}
}

func (s *ContactService) Enabled() bool {
	return s.sender.Enabled()
}

func (s *ContactService) Send(ctx context.Context, input ContactInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := validateStruct(input); err != nil {
		return err
	}
	if !s.sender.Enabled() {
		return ErrContactDisabled
	}

	err := s.sender.SendContactMessage(ctx, email.ContactMessage{
		Name:       input.Name,
		Email:      input.Email,
		Subject:    input.Subject,
		Message:    input.Message,
		ReceivedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("contact message not delivered", zap.String("reply_to", input.Email), zap.Error(err))
		return err
	}
	s.logger.Info("contact message delivered", zap.String("reply_to", input.Email))
	return nil
}
