package models

import "time"

// MailJob is the message published to the MAIL stream for out-of-band
// delivery. Encoded with msgpack on the wire.
type MailJob struct {
	JobID     string    `msgpack:"job_id"`
	Kind      string    `msgpack:"kind"`
	Recipient string    `msgpack:"recipient"`
	Code      string    `msgpack:"code"`
	ExpiresAt time.Time `msgpack:"expires_at"`
	IssuedAt  time.Time `msgpack:"issued_at"`
}

const MailKindResetCode = "reset_code"
