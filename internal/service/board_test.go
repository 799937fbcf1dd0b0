package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

func seedBoardWithThreads(n int) *mockStorage {
	storage := newMockStorage()
	storage.boards[testBoardId] = domain.Board{Id: testBoardId, Name: "Test"}
	for i := 0; i < n; i++ {
		key := int64(1700000000 + i)
		thread := domain.Thread{
			Key:     key,
			Board:   testBoardId,
			Title:   fmt.Sprintf("Thread %d", i),
			SortKey: key,
		}
		storage.threads[thread.StorageId()] = thread
	}
	return storage
}

func TestBoardThreads(t *testing.T) {
	service := NewBoard(seedBoardWithThreads(5), 2)

	t.Run("first page", func(t *testing.T) {
		threads, err := service.Threads(testBoardId, 0)
		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, "Thread 4", threads[0].Title, "newest activity first")
		assert.Equal(t, "Thread 3", threads[1].Title)
	})

	t.Run("last page is partial", func(t *testing.T) {
		threads, err := service.Threads(testBoardId, 2)
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, "Thread 0", threads[0].Title)
	})

	t.Run("page past the end", func(t *testing.T) {
		threads, err := service.Threads(testBoardId, 3)
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("negative page", func(t *testing.T) {
		threads, err := service.Threads(testBoardId, -1)
		require.NoError(t, err)
		assert.Empty(t, threads)
	})

	t.Run("unknown board", func(t *testing.T) {
		_, err := service.Threads("nope", 0)
		var notFound *internal_errors.NotFound
		require.ErrorAs(t, err, &notFound)
	})
}

func TestBoardThread(t *testing.T) {
	storage := seedBoardWithThreads(1)
	storage.responses["b_1700000000"] = []domain.Response{
		{Id: "r1", ParentId: "b_1700000000"},
		{Id: "r2", ParentId: "b_1700000000"},
	}
	service := NewBoard(storage, 10)

	t.Run("includes response count", func(t *testing.T) {
		thread, err := service.Thread(testBoardId, 1700000000)
		require.NoError(t, err)
		assert.Equal(t, 2, thread.Count)
	})

	t.Run("unknown board", func(t *testing.T) {
		_, err := service.Thread("nope", 1700000000)
		var notFound *internal_errors.NotFound
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := service.Thread(testBoardId, 42)
		var notFound *internal_errors.NotFound
		require.ErrorAs(t, err, &notFound)
	})
}

func TestBoardResponses(t *testing.T) {
	storage := seedBoardWithThreads(1)
	storage.responses["b_1700000000"] = []domain.Response{
		{Id: "r1", ParentId: "b_1700000000", Content: "first"},
		{Id: "r2", ParentId: "b_1700000000", Content: "second", Deleted: true},
	}
	service := NewBoard(storage, 10)

	t.Run("posting order, deleted included", func(t *testing.T) {
		responses, err := service.Responses(testBoardId, 1700000000)
		require.NoError(t, err)
		require.Len(t, responses, 2)
		assert.Equal(t, "first", responses[0].Content)
		assert.True(t, responses[1].Deleted)
	})

	t.Run("unknown thread", func(t *testing.T) {
		_, err := service.Responses(testBoardId, 42)
		var notFound *internal_errors.NotFound
		require.ErrorAs(t, err, &notFound)
	})
}
