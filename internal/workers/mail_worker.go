package workers

import (
	"context"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"upfafrica-backend/internal/models"
	"upfafrica-backend/internal/natsbus"
	"upfafrica-backend/internal/services"
)

// MailWorker drains the MAIL stream and hands each job to the mail client.
// Failed deliveries are redelivered by JetStream up to MaxDeliver.
type MailWorker struct {
	js   nats.JetStreamContext
	mail *services.MailClient
	sub  *nats.Subscription
}

func NewMailWorker(js nats.JetStreamContext, mail *services.MailClient) *MailWorker {
	return &MailWorker{js: js, mail: mail}
}

func (w *MailWorker) Start(ctx context.Context) error {
	sub, err := w.js.PullSubscribe(
		"mail.>",
		"mail-sender",
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(5),
		nats.MaxAckPending(256),
	)
	if err != nil {
		return err
	}
	w.sub = sub

	go w.consumeLoop(ctx)
	log.Println("INFO Mail worker started")
	return nil
}

func (w *MailWorker) Stop() error {
	if w.sub != nil {
		return w.sub.Unsubscribe()
	}
	return nil
}

func (w *MailWorker) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := w.sub.Fetch(16, nats.MaxWait(5*time.Second))
		if err != nil {
			if err != nats.ErrTimeout {
				log.Printf("WARN Mail fetch error: %v", err)
			}
			continue
		}

		for _, msg := range msgs {
			w.handle(msg)
		}
	}
}

func (w *MailWorker) handle(msg *nats.Msg) {
	var job models.MailJob
	if err := msgpack.Unmarshal(msg.Data, &job); err != nil {
		log.Printf("ERROR Mail job decode on %s: %v", natsbus.SubjectMail, err)
		// Undecodable payloads never succeed on retry.
		_ = msg.Term()
		return
	}

	if err := w.mail.Deliver(job); err != nil {
		log.Printf("WARN Mail delivery job=%s to=%s failed: %v", job.JobID, job.Recipient, err)
		_ = msg.Nak()
		return
	}

	log.Printf("INFO Mail delivered job=%s kind=%s", job.JobID, job.Kind)
	_ = msg.Ack()
}
