package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	m := NewMessage("clinic@example.com", "maria@example.com", "Appointment confirmed", "See you Monday")

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: clinic@example.com")
	assert.Contains(t, raw, "To: maria@example.com")
	assert.Contains(t, raw, "Subject: Appointment confirmed")
	assert.Contains(t, raw, "See you Monday")
}

func TestSMTPServiceHonorsCancelledContext(t *testing.T) {
	svc := NewSMTPService(SMTPConfig{Host: "localhost", Port: 1, From: "clinic@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, svc.Send(ctx, "maria@example.com", "s", "b"), context.Canceled)
}

func TestLogService(t *testing.T) {
	var buf bytes.Buffer
	svc := NewLogService(zerolog.New(&buf))

	require.NoError(t, svc.Send(context.Background(), "maria@example.com", "Bill issued", "body"))
	assert.Contains(t, buf.String(), "Bill issued")
}
