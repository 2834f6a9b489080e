package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/ri-expiration-report/internal/dispatch"
	"github.com/ab0utbla-k/ri-expiration-report/internal/events"
	"github.com/ab0utbla-k/ri-expiration-report/internal/mail"
	"github.com/ab0utbla-k/ri-expiration-report/internal/report"
	"github.com/ab0utbla-k/ri-expiration-report/internal/reservation"
)

// DirectoryMock is a mock implementation of the Directory interface.
type DirectoryMock struct {
	mock.Mock
}

func (m *DirectoryMock) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// VerifierMock is a mock implementation of the Verifier interface.
type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) EnsureVerified(ctx context.Context, recipients []string) []string {
	args := m.Called(ctx, recipients)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// QuerierMock is a mock implementation of the pipeline Querier interface.
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

// ArchiverMock is a mock implementation of the Archiver interface.
type ArchiverMock struct {
	mock.Mock
}

func (m *ArchiverMock) Put(ctx context.Context, key string, body []byte) error {
	return m.Called(ctx, key, body).Error(0)
}

// ExporterMock is a mock implementation of the Exporter interface.
type ExporterMock struct {
	mock.Mock
}

func (m *ExporterMock) Export(sheet report.Sheet) (report.Workbook, error) {
	args := m.Called(sheet)
	return args.Get(0).(report.Workbook), args.Error(1)
}

// DispatcherMock is a mock implementation of the Dispatcher interface.
type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Dispatch(ctx context.Context, msg mail.Message, recipients []string) dispatch.Outcome {
	return m.Called(ctx, msg, recipients).Get(0).(dispatch.Outcome)
}

// SummaryMock implements the Recorder, Alerter and Publisher interfaces.
type SummaryMock struct {
	mock.Mock
}

func (m *SummaryMock) Record(ctx context.Context, summary *events.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}

func (m *SummaryMock) Alert(ctx context.Context, summary *events.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}

func (m *SummaryMock) Publish(ctx context.Context, summary *events.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}
