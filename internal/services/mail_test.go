package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upfafrica-backend/internal/models"
)

func testJob() models.MailJob {
	return models.MailJob{
		JobID:     "job-1",
		Kind:      models.MailKindResetCode,
		Recipient: "alice@example.com",
		Code:      "AB12CD",
		ExpiresAt: time.Now().Add(15 * time.Minute),
		IssuedAt:  time.Now(),
	}
}

func TestDeliverPostsToWebhook(t *testing.T) {
	var received mailPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewMailClient(server.URL)
	require.NoError(t, client.Deliver(testJob()))

	assert.Equal(t, "alice@example.com", received.To)
	assert.Contains(t, received.TextBody, "AB12CD")
}

func TestDeliverWithoutWebhookDrops(t *testing.T) {
	client := NewMailClient("")
	assert.NoError(t, client.Deliver(testJob()))
}

func TestDeliverSurfacesWebhookErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "mailbox full", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewMailClient(server.URL)
	err := client.Deliver(testJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
