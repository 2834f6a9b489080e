package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/ri-expiration-report/internal/reservation"
)

// QuerierMock is a mock implementation of the Querier interface.
type QuerierMock struct {
	mock.Mock
}

func (m *QuerierMock) ListActive(ctx context.Context, kind reservation.Kind) ([]reservation.RawRecord, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.RawRecord), args.Error(1)
}
