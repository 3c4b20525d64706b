package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"upfafrica-backend/internal/models"
)

// MailClient posts mail jobs to the transactional-mail webhook. Without a
// configured webhook it logs and drops, which keeps local development from
// needing a mail account.
type MailClient struct {
	webhookURL string
	client     *http.Client
}

type mailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

func NewMailClient(webhookURL string) *MailClient {
	return &MailClient{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *MailClient) Deliver(job models.MailJob) error {
	if c.webhookURL == "" {
		log.Printf("INFO No MAIL_WEBHOOK_URL configured, dropping %s mail for %s", job.Kind, job.Recipient)
		return nil
	}

	payload := mailPayload{
		To:       job.Recipient,
		Subject:  "Your password reset code",
		TextBody: buildResetBody(job),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	resp, err := c.client.Post(c.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post mail webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildResetBody(job models.MailJob) string {
	minutes := int(time.Until(job.ExpiresAt).Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf(
		"Your password reset code is %s. It expires in %d minutes. If you did not request a reset, ignore this message.",
		job.Code, minutes,
	)
}
