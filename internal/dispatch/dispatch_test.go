package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func to(addr string) any {
	return mock.MatchedBy(func(m mail.Message) bool { return m.To == addr })
}

func TestDispatch_PartialFailure(t *testing.T) {
	s := new(SenderMock)
	s.On("Send", mock.Anything, to("a@example.com")).Return("msg-a", nil)
	s.On("Send", mock.Anything, to("b@example.com")).Return("", errors.New("MessageRejected"))

	msg := mail.Message{Subject: "Amazon RI Expiration Notification", HTML: "<h3>EC2</h3>"}
	out := New(s, 10, discardLogger()).Dispatch(context.Background(), msg, []string{"a@example.com", "b@example.com"})

	require.Len(t, out.Results, 2)
	assert.Equal(t, Result{Recipient: "a@example.com", MessageID: "msg-a"}, out.Results[0])
	assert.Equal(t, "b@example.com", out.Results[1].Recipient)
	assert.EqualError(t, out.Results[1].Err, "MessageRejected")

	require.Len(t, out.Failed(), 1)
	assert.Equal(t, "b@example.com", out.Failed()[0].Recipient)
	assert.Equal(t, 1, out.Delivered())
	assert.ErrorContains(t, out.Err(), "b@example.com: MessageRejected")

	assert.Empty(t, msg.To)
	s.AssertNumberOfCalls(t, "Send", 2)
}

func TestDispatch_NoRecipients(t *testing.T) {
	s := new(SenderMock)

	out := New(s, 10, discardLogger()).Dispatch(context.Background(), mail.Message{}, nil)

	assert.Empty(t, out.Results)
	assert.NoError(t, out.Err())
	s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_EachWorkerOwnsItsMessage(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]string{}
	)

	s := new(SenderMock)
	s.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			m := args.Get(1).(mail.Message)
			m.Attachments[0].Data[0] = 'x'

			mu.Lock()
			seen[m.To] = string(m.Attachments[0].Data)
			mu.Unlock()
		}).
		Return("id", nil)

	msg := mail.Message{Attachments: []mail.Attachment{{Filename: "a.xlsx", Data: []byte("PK")}}}
	recipients := []string{"a@example.com", "b@example.com", "c@example.com"}

	out := New(s, 0, discardLogger()).Dispatch(context.Background(), msg, recipients)

	assert.NoError(t, out.Err())
	assert.Equal(t, "PK", string(msg.Attachments[0].Data))
	for _, r := range recipients {
		assert.Equal(t, "xK", seen[r])
	}
}

type slowSender struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (s *slowSender) Send(_ context.Context, msg mail.Message) (string, error) {
	n := s.running.Add(1)
	defer s.running.Add(-1)

	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(10 * time.Millisecond)
	return "id-" + msg.To, nil
}

func TestDispatch_RespectsLimit(t *testing.T) {
	s := &slowSender{}
	recipients := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	out := New(s, 2, discardLogger()).Dispatch(context.Background(), mail.Message{}, recipients)

	assert.Equal(t, len(recipients), out.Delivered())
	assert.LessOrEqual(t, s.peak.Load(), int32(2))
	for i, r := range recipients {
		assert.Equal(t, r, out.Results[i].Recipient)
		assert.Equal(t, "id-"+r, out.Results[i].MessageID)
	}
}
