package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

func (s *Storage) CreateBoard(board domain.Board) error {
	if board.Attributes == nil {
		board.Attributes = domain.Attributes{}
	}
	_, err := s.db.Exec(
		"INSERT INTO boards (id, name, description, anon_name, attributes) VALUES ($1, $2, $3, $4, $5)",
		board.Id, board.Name, board.Description, board.AnonName, board.Attributes,
	)
	if err != nil {
		if errors.Is(mapUniqueViolation(err), internal_errors.ErrAlreadyExists) {
			return &internal_errors.ErrorWithStatusCode{
				Message:    "Board already exists",
				StatusCode: http.StatusConflict,
			}
		}
		return fmt.Errorf("failed to insert board: %w", err)
	}
	return nil
}

func (s *Storage) GetBoard(id domain.BoardId) (domain.Board, error) {
	var board domain.Board
	err := s.db.QueryRow(
		"SELECT id, name, description, anon_name, attributes FROM boards WHERE id = $1", id,
	).Scan(&board.Id, &board.Name, &board.Description, &board.AnonName, &board.Attributes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, &internal_errors.NotFound{What: "Board"}
		}
		return domain.Board{}, fmt.Errorf("failed to fetch board: %w", err)
	}
	return board, nil
}

func (s *Storage) GetBoards() ([]domain.Board, error) {
	rows, err := s.db.Query("SELECT id, name, description, anon_name, attributes FROM boards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boards: %w", err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(&board.Id, &board.Name, &board.Description, &board.AnonName, &board.Attributes); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return boards, nil
}
