package service

import (
	"github.com/14ChannelBBS/Qua/internal/domain"
)

// BoardStorage is the read side of the board/thread/response store.
type BoardStorage interface {
	GetBoards() ([]domain.Board, error)
	GetBoard(id domain.BoardId) (domain.Board, error)
	GetThreads(board domain.BoardId) ([]domain.Thread, error)
	GetThread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error)
	GetResponses(parentId string) ([]domain.Response, error)
}

type Board struct {
	storage        BoardStorage
	threadsPerPage int
}

func NewBoard(storage BoardStorage, threadsPerPage int) *Board {
	return &Board{storage, threadsPerPage}
}

func (b *Board) Boards() ([]domain.Board, error) {
	return b.storage.GetBoards()
}

func (b *Board) Get(id domain.BoardId) (domain.Board, error) {
	return b.storage.GetBoard(id)
}

// Threads returns one page of a board's threads, newest activity first.
// Pages are zero-based; a page past the end is empty, not an error.
func (b *Board) Threads(board domain.BoardId, page int) ([]domain.Thread, error) {
	all, err := b.AllThreads(board)
	if err != nil {
		return nil, err
	}
	start := page * b.threadsPerPage
	if start < 0 || start >= len(all) {
		return []domain.Thread{}, nil
	}
	end := start + b.threadsPerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// AllThreads is the unpaginated listing the legacy thread index needs.
func (b *Board) AllThreads(board domain.BoardId) ([]domain.Thread, error) {
	if _, err := b.storage.GetBoard(board); err != nil {
		return nil, err
	}
	return b.storage.GetThreads(board)
}

func (b *Board) Thread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error) {
	if _, err := b.storage.GetBoard(board); err != nil {
		return domain.Thread{}, err
	}
	return b.storage.GetThread(board, key)
}

// Responses returns a thread's responses in posting order.
func (b *Board) Responses(board domain.BoardId, key domain.ThreadKey) ([]domain.Response, error) {
	thread, err := b.Thread(board, key)
	if err != nil {
		return nil, err
	}
	return b.storage.GetResponses(thread.StorageId())
}
