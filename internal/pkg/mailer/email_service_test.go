package mailer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"mealbox-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func TestSendCancellationNotice(t *testing.T) {
	rec := &recordingSender{}
	s := &emailService{dialer: rec, senderEmail: "ops@mealbox.test", senderName: "Mealbox", logger: logger.NewNopLogger()}

	err := s.SendCancellationNotice("ana@example.com", CancellationNotice{
		CustomerName:  "Ana <script>",
		Reason:        "kitchen closed",
		DeliveryDates: []time.Time{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		ByOperator:    true,
	})
	require.NoError(t, err)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, rec.sent[0].GetHeader("To"))

	var buf bytes.Buffer
	_, err = rec.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Saturday, 15 Mar 2025")
	assert.NotContains(t, out, "<script>")
}

func TestSendCancellationNotice_Failure(t *testing.T) {
	rec := &recordingSender{err: errors.New("connection refused")}
	s := &emailService{dialer: rec, logger: logger.NewNopLogger()}
	assert.Error(t, s.SendCancellationNotice("a@b.c", CancellationNotice{Reason: "x"}))
}

func TestNewEmailService_WithoutHostIsNoop(t *testing.T) {
	s := NewEmailService("", 587, "", "", "Mealbox", logger.NewNopLogger())
	assert.NoError(t, s.SendCancellationNotice("a@b.c", CancellationNotice{Reason: "x"}))
}
