package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/SAP-F-2025/exam-studio/internal/events"
	"github.com/SAP-F-2025/exam-studio/internal/models"
	"github.com/SAP-F-2025/exam-studio/internal/repositories"
	"github.com/SAP-F-2025/exam-studio/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_List(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewHistoryMemory()
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Append(ctx, &models.ExamResult{ID: fmt.Sprintf("r%d", i), BankID: "b", Score: i * 10}))
	}
	svc := NewHistoryService(repo, nil, testLogger())

	resp, err := svc.List(ctx, repositories.HistoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, defaultHistoryLimit, resp.Limit)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "r3", resp.Results[0].ID, "most recent first")

	resp, err = svc.List(ctx, repositories.HistoryFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "r2", resp.Results[0].ID)
}

func TestHistoryService_ListClampsLimit(t *testing.T) {
	repo := &MockHistoryRepository{}
	repo.On("List", mock.Anything, repositories.HistoryFilters{Limit: maxHistoryLimit}).
		Return([]*models.ExamResult(nil), int64(0), nil)
	svc := NewHistoryService(repo, nil, testLogger())

	resp, err := svc.List(context.Background(), repositories.HistoryFilters{Limit: 10_000, Offset: -4})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	repo.AssertExpectations(t)
}

func TestHistoryService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewHistoryMemory()
	require.NoError(t, repo.Append(ctx, &models.ExamResult{ID: "r1", BankID: "b1"}))
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewHistoryService(repo, publisher, testLogger())

	require.NoError(t, svc.Delete(ctx, "r1"))

	_, err := svc.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "r1"), ErrResultNotFound)

	deleted := publisher.EventsOfType(events.EventHistoryDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, events.HistoryDeletedEvent{ResultID: "r1", BankID: "b1"}, deleted[0].Data)
}

func TestHistoryService_ScopesResultsToUser(t *testing.T) {
	repo := memory.NewHistoryMemory()
	background := context.Background()
	require.NoError(t, repo.Append(background, &models.ExamResult{ID: "mine", BankID: "b", OwnerID: "alice"}))
	require.NoError(t, repo.Append(background, &models.ExamResult{ID: "theirs", BankID: "b", OwnerID: "bob"}))
	svc := NewHistoryService(repo, nil, testLogger())

	alice := context.WithValue(background, UserIDKey, "alice")

	resp, err := svc.List(alice, repositories.HistoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "mine", resp.Results[0].ID)

	_, err = svc.Get(alice, "theirs")
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.ErrorIs(t, svc.Delete(alice, "theirs"), ErrResultNotFound)

	_, err = repo.GetByID(background, "theirs")
	require.NoError(t, err, "another user's result is left in place")

	resp, err = svc.List(background, repositories.HistoryFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total, "without authentication every result is visible")
}
