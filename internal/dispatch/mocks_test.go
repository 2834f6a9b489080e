package dispatch

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
)

// SenderMock is a mock implementation of the Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, msg mail.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
