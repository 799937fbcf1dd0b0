package pg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

// CreateThread inserts the thread row. It returns ErrAlreadyExists on a key
// collision so the allocator can retry with the next second.
func (s *Storage) CreateThread(thread domain.Thread) error {
	if thread.Attributes == nil {
		thread.Attributes = domain.Attributes{}
	}
	_, err := s.db.Exec(`
        INSERT INTO threads (id, board, key, title, created_at, sort_key, owner_id, owner_shown_id, attributes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, thread.StorageId(), thread.Board, thread.Key, thread.Title,
		thread.CreatedAt, thread.SortKey, thread.OwnerId, thread.OwnerShownId, thread.Attributes)
	if err != nil {
		if mapped := mapUniqueViolation(err); errors.Is(mapped, internal_errors.ErrAlreadyExists) {
			return mapped
		}
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	return nil
}

func (s *Storage) GetThread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error) {
	var thread domain.Thread
	err := s.db.QueryRow(`
        SELECT t.board, t.key, t.title, t.created_at, t.sort_key, t.owner_id, t.owner_shown_id,
               t.attributes, t.deleted,
               (SELECT COUNT(*) FROM responses r WHERE r.parent_id = t.id)
        FROM threads t
        WHERE t.id = $1 AND NOT t.deleted
    `, domain.ThreadStorageId(board, key)).Scan(
		&thread.Board, &thread.Key, &thread.Title, &thread.CreatedAt, &thread.SortKey,
		&thread.OwnerId, &thread.OwnerShownId, &thread.Attributes, &thread.Deleted, &thread.Count,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, &internal_errors.NotFound{What: "Thread"}
		}
		return domain.Thread{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return thread, nil
}

// GetThreads returns the board's live threads newest-activity first, each
// with its response count.
func (s *Storage) GetThreads(board domain.BoardId) ([]domain.Thread, error) {
	rows, err := s.db.Query(`
        SELECT t.board, t.key, t.title, t.created_at, t.sort_key, t.owner_id, t.owner_shown_id,
               t.attributes, t.deleted,
               (SELECT COUNT(*) FROM responses r WHERE r.parent_id = t.id)
        FROM threads t
        WHERE t.board = $1 AND NOT t.deleted
        ORDER BY t.sort_key DESC
    `, board)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var thread domain.Thread
		if err := rows.Scan(
			&thread.Board, &thread.Key, &thread.Title, &thread.CreatedAt, &thread.SortKey,
			&thread.OwnerId, &thread.OwnerShownId, &thread.Attributes, &thread.Deleted, &thread.Count,
		); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

func (s *Storage) DeleteThread(board domain.BoardId, key domain.ThreadKey) error {
	result, err := s.db.Exec(
		"UPDATE threads SET deleted = TRUE WHERE id = $1 AND NOT deleted",
		domain.ThreadStorageId(board, key),
	)
	if err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.NotFound{What: "Thread"}
	}
	return nil
}
