// Package api carries the wire DTOs of the JSON surface. Authorship fields
// (ownerId, authorId) and raw reaction voter lists never appear here.
package api

import (
	"time"

	"github.com/14ChannelBBS/Qua/internal/domain"
)

// Request DTOs

type CreateThreadRequest struct {
	Title   string `json:"title" validate:"required"`
	Name    string `json:"name"`
	Command string `json:"command"`
	Content string `json:"content" validate:"required"`
}

type CreateResponseRequest struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Content string `json:"content" validate:"required"`
}

type VerificationRequest struct {
	TurnstileResponse string `json:"turnstileResponse" validate:"required"`
}

// Response DTOs

type Board struct {
	Id          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AnonName    string            `json:"anon_name"`
	Attributes  domain.Attributes `json:"attributes"`
}

type Thread struct {
	Id           int64             `json:"id"`
	Board        string            `json:"board"`
	Title        string            `json:"title"`
	CreatedAt    time.Time         `json:"created_at"`
	SortKey      int64             `json:"sort_key"`
	OwnerShownId string            `json:"owner_shown_id"`
	Count        int               `json:"count"`
	Attributes   domain.Attributes `json:"attributes"`
}

type Response struct {
	Id         string                 `json:"id"`
	ParentId   string                 `json:"parent_id"`
	CreatedAt  time.Time              `json:"created_at"`
	ShownId    string                 `json:"shown_id"`
	Name       string                 `json:"name"`
	Content    string                 `json:"content"`
	Reactions  []domain.ReactionCount `json:"reactions"`
	Attributes domain.Attributes      `json:"attributes"`
	Deleted    bool                   `json:"deleted"`
}

type VerificationResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func FromBoard(b domain.Board) Board {
	return Board{
		Id:          b.Id,
		Name:        b.Name,
		Description: b.Description,
		AnonName:    b.AnonName,
		Attributes:  b.Attributes,
	}
}

func FromBoards(boards []domain.Board) []Board {
	out := make([]Board, 0, len(boards))
	for _, b := range boards {
		out = append(out, FromBoard(b))
	}
	return out
}

func FromThread(t domain.Thread) Thread {
	return Thread{
		Id:           t.Key,
		Board:        t.Board,
		Title:        t.Title,
		CreatedAt:    t.CreatedAt,
		SortKey:      t.SortKey,
		OwnerShownId: t.OwnerShownId,
		Count:        t.Count,
		Attributes:   t.Attributes,
	}
}

func FromThreads(threads []domain.Thread) []Thread {
	out := make([]Thread, 0, len(threads))
	for _, t := range threads {
		out = append(out, FromThread(t))
	}
	return out
}

func FromResponse(r domain.Response) Response {
	return Response{
		Id:         r.Id,
		ParentId:   r.ParentId,
		CreatedAt:  r.CreatedAt,
		ShownId:    r.ShownId,
		Name:       r.Name,
		Content:    r.Content,
		Reactions:  r.Reactions.Counts(),
		Attributes: r.Attributes,
		Deleted:    r.Deleted,
	}
}

func FromResponses(responses []domain.Response) []Response {
	out := make([]Response, 0, len(responses))
	for _, r := range responses {
		out = append(out, FromResponse(r))
	}
	return out
}
