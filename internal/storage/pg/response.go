package pg

import (
	"fmt"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

// CreateResponse inserts the response and, when bump is set, moves the parent
// thread to the top of the board in the same transaction. Responses mailed
// "sage" insert with bump unset.
func (s *Storage) CreateResponse(response domain.Response, host string, bump bool) error {
	if response.Reactions == nil {
		response.Reactions = domain.Reactions{}
	}
	if response.Attributes == nil {
		response.Attributes = domain.Attributes{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        INSERT INTO responses (id, parent_id, created_at, author_id, shown_id, host, name, content, reactions, attributes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, response.Id, response.ParentId, response.CreatedAt, response.AuthorId,
		response.ShownId, host, response.Name, response.Content, response.Reactions, response.Attributes)
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}

	if bump {
		if _, err := tx.Exec(
			"UPDATE threads SET sort_key = $1 WHERE id = $2",
			response.CreatedAt.Unix(), response.ParentId,
		); err != nil {
			return fmt.Errorf("failed to bump thread: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetResponses returns every response of a thread in posting order, deleted
// ones included. Positional >>N references depend on deleted rows keeping
// their place.
func (s *Storage) GetResponses(parentId string) ([]domain.Response, error) {
	rows, err := s.db.Query(`
        SELECT id, parent_id, created_at, author_id, shown_id, name, content, reactions, attributes, deleted
        FROM responses
        WHERE parent_id = $1
        ORDER BY created_at ASC
    `, parentId)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}
	defer rows.Close()

	var responses []domain.Response
	for rows.Next() {
		var r domain.Response
		if err := rows.Scan(
			&r.Id, &r.ParentId, &r.CreatedAt, &r.AuthorId, &r.ShownId,
			&r.Name, &r.Content, &r.Reactions, &r.Attributes, &r.Deleted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return responses, nil
}

func (s *Storage) UpdateReactions(responseId string, reactions domain.Reactions) error {
	if reactions == nil {
		reactions = domain.Reactions{}
	}
	result, err := s.db.Exec(
		"UPDATE responses SET reactions = $1 WHERE id = $2", reactions, responseId,
	)
	if err != nil {
		return fmt.Errorf("failed to update reactions: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.NotFound{What: "Response"}
	}
	return nil
}

func (s *Storage) DeleteResponse(id string) error {
	result, err := s.db.Exec("UPDATE responses SET deleted = TRUE WHERE id = $1 AND NOT deleted", id)
	if err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.NotFound{What: "Response"}
	}
	return nil
}
