package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/legacy"
	"github.com/14ChannelBBS/Qua/internal/logger"
	"github.com/14ChannelBBS/Qua/internal/realtime"
)

type BoardService interface {
	Boards() ([]domain.Board, error)
	Get(id domain.BoardId) (domain.Board, error)
	Threads(board domain.BoardId, page int) ([]domain.Thread, error)
	AllThreads(board domain.BoardId) ([]domain.Thread, error)
	Thread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error)
	Responses(board domain.BoardId, key domain.ThreadKey) ([]domain.Response, error)
}

type PostService interface {
	CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	CreateResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Response, error)
	RenderResponses(thread *domain.Thread, responses []domain.Response, device domain.Device) []domain.Response
}

type IdentityService interface {
	Mint(ctx context.Context, challengeToken, ip string) (domain.Identity, error)
}

type Handler struct {
	board    BoardService
	post     PostService
	identity IdentityService
	hub      *realtime.Hub
	policy   legacy.EncodePolicy
}

func New(board BoardService, post PostService, identity IdentityService, hub *realtime.Hub, policy legacy.EncodePolicy) *Handler {
	return &Handler{board, post, identity, hub, policy}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// writeError renders the structured JSON error body: a machine `detail` code
// plus the per-class extras clients need to act on it.
func writeError(w http.ResponseWriter, err error) {
	statusCode := internal_errors.StatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
	}

	body := map[string]any{"detail": internal_errors.Detail(err)}
	var (
		verif     *internal_errors.VerificationRequired
		tooShort  *internal_errors.ContentTooShort
		tooLong   *internal_errors.ContentTooLong
		rateLimit *internal_errors.PostRateLimit
		backend   *internal_errors.BackendError
	)
	switch {
	case errors.As(err, &verif):
		body["site_key"] = verif.SiteKey
	case errors.As(err, &tooShort):
		body["field"] = tooShort.Field
		body["min"] = tooShort.Min
	case errors.As(err, &tooLong):
		body["field"] = tooLong.Field
		body["max"] = tooLong.Max
	case errors.As(err, &rateLimit):
		body["remaining"] = rateLimit.Remaining
	case errors.As(err, &backend):
		body["message"] = backend.Message
	}
	writeJSON(w, statusCode, body)
}
