package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"upfafrica-backend/internal/models"
	"upfafrica-backend/internal/natsbus"
)

// Mailer queues reset codes on the MAIL stream. Delivery happens in the
// mail worker, never in the request path, so the code is only ever observed
// through the out-of-band channel.
type Mailer struct {
	js nats.JetStreamContext
}

func New(js nats.JetStreamContext) *Mailer {
	return &Mailer{js: js}
}

func (m *Mailer) SendResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	job := models.MailJob{
		JobID:     uuid.New().String(),
		Kind:      models.MailKindResetCode,
		Recipient: email,
		Code:      code,
		ExpiresAt: expiresAt,
		IssuedAt:  time.Now().UTC(),
	}

	payload, err := msgpack.Marshal(&job)
	if err != nil {
		return fmt.Errorf("marshal mail job: %w", err)
	}

	if _, err := m.js.Publish(natsbus.SubjectMail, payload, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish mail job: %w", err)
	}
	return nil
}
