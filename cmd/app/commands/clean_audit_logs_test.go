package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/fieldvault/internal/audit/domain"
	"github.com/allisson/fieldvault/internal/diff"
)

// mockAuditLogUseCase is a mock implementation of auditUsecase.AuditLogUseCase.
type mockAuditLogUseCase struct {
	mock.Mock
}

func (m *mockAuditLogUseCase) Record(entityType, entityID string, changes []diff.FieldChange, changedByID *string) {
	m.Called(entityType, entityID, changes, changedByID)
}

func (m *mockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	args := m.Called(ctx, offset, limit, createdAtFrom, createdAtTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

func (m *mockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

func TestRunCleanAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	days := 30

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockAuditLogUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, days, false).Return(int64(100), nil)

		var out bytes.Buffer
		err := RunCleanAuditLogs(ctx, mockUseCase, logger, &out, days, false, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully deleted 100 audit log(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("dry-run-text-output", func(t *testing.T) {
		mockUseCase := &mockAuditLogUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, days, true).Return(int64(7), nil)

		var out bytes.Buffer
		err := RunCleanAuditLogs(ctx, mockUseCase, logger, &out, days, true, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Would delete 7 audit log(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockAuditLogUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, days, true).Return(int64(50), nil)

		var out bytes.Buffer
		err := RunCleanAuditLogs(ctx, mockUseCase, logger, &out, days, true, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 50`)
		require.Contains(t, out.String(), `"dry_run": true`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-days", func(t *testing.T) {
		mockUseCase := &mockAuditLogUseCase{}
		err := RunCleanAuditLogs(ctx, mockUseCase, logger, &bytes.Buffer{}, -1, false, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
		mockUseCase.AssertNotCalled(t, "DeleteOlderThan")
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &mockAuditLogUseCase{}
		mockUseCase.On("DeleteOlderThan", ctx, days, false).Return(int64(0), context.DeadlineExceeded)

		err := RunCleanAuditLogs(ctx, mockUseCase, logger, &bytes.Buffer{}, days, false, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to delete audit logs")
	})
}
