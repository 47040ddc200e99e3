package email

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("email sender disabled")

// ContactMessage es lo que llega desde el formulario de contacto.
type ContactMessage struct {
	Name       string
	Email      string
	Subject    string
	Message    string
	ReceivedAt time.Time
}

// Sender define la interfaz para reenviar mensajes de contacto.
type Sender interface {
	SendContactMessage(ctx context.Context, msg ContactMessage) error
	Enabled() bool
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendContactMessage(_ context.Context, _ ContactMessage) error {
	if s.reason == "" {
		return ErrDisabled
	}
	return errors.Join(ErrDisabled, errors.New(s.reason))
}

func (s *disabledSender) Enabled() bool { return false }
