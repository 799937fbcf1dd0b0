package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/14ChannelBBS/Qua/internal/domain"
	"github.com/14ChannelBBS/Qua/internal/legacy"
)

// Mocks follow the service interfaces; behavior is overridden per test
// through the *Func fields.

type mockBoardService struct {
	BoardsFunc     func() ([]domain.Board, error)
	GetFunc        func(id domain.BoardId) (domain.Board, error)
	ThreadsFunc    func(board domain.BoardId, page int) ([]domain.Thread, error)
	AllThreadsFunc func(board domain.BoardId) ([]domain.Thread, error)
	ThreadFunc     func(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error)
	ResponsesFunc  func(board domain.BoardId, key domain.ThreadKey) ([]domain.Response, error)
}

func (m *mockBoardService) Boards() ([]domain.Board, error) {
	if m.BoardsFunc != nil {
		return m.BoardsFunc()
	}
	return nil, nil
}

func (m *mockBoardService) Get(id domain.BoardId) (domain.Board, error) {
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return domain.Board{Id: id}, nil
}

func (m *mockBoardService) Threads(board domain.BoardId, page int) ([]domain.Thread, error) {
	if m.ThreadsFunc != nil {
		return m.ThreadsFunc(board, page)
	}
	return nil, nil
}

func (m *mockBoardService) AllThreads(board domain.BoardId) ([]domain.Thread, error) {
	if m.AllThreadsFunc != nil {
		return m.AllThreadsFunc(board)
	}
	return nil, nil
}

func (m *mockBoardService) Thread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error) {
	if m.ThreadFunc != nil {
		return m.ThreadFunc(board, key)
	}
	return domain.Thread{Board: board, Key: key}, nil
}

func (m *mockBoardService) Responses(board domain.BoardId, key domain.ThreadKey) ([]domain.Response, error) {
	if m.ResponsesFunc != nil {
		return m.ResponsesFunc(board, key)
	}
	return nil, nil
}

type mockPostService struct {
	CreateThreadFunc    func(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error)
	CreateResponseFunc  func(ctx context.Context, data domain.ResponseCreationData) (domain.Response, error)
	RenderResponsesFunc func(thread *domain.Thread, responses []domain.Response, device domain.Device) []domain.Response
}

func (m *mockPostService) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	if m.CreateThreadFunc != nil {
		return m.CreateThreadFunc(ctx, data)
	}
	return domain.Thread{Board: data.Board, Title: data.Title, Key: 1700000000}, nil
}

func (m *mockPostService) CreateResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Response, error) {
	if m.CreateResponseFunc != nil {
		return m.CreateResponseFunc(ctx, data)
	}
	return domain.Response{Id: "r1", ParentId: domain.ThreadStorageId(data.Board, data.ThreadKey)}, nil
}

func (m *mockPostService) RenderResponses(thread *domain.Thread, responses []domain.Response, device domain.Device) []domain.Response {
	if m.RenderResponsesFunc != nil {
		return m.RenderResponsesFunc(thread, responses, device)
	}
	return responses
}

type mockIdentityService struct {
	MintFunc func(ctx context.Context, challengeToken, ip string) (domain.Identity, error)
}

func (m *mockIdentityService) Mint(ctx context.Context, challengeToken, ip string) (domain.Identity, error) {
	if m.MintFunc != nil {
		return m.MintFunc(ctx, challengeToken, ip)
	}
	return domain.Identity{Token: "minted-token", Id: "Ab3dEf7h"}, nil
}

// testRouter mirrors the production route patterns.
func testRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/boards", h.GetBoards).Methods(http.MethodGet)
	router.HandleFunc("/api/boards/{board}", h.GetBoard).Methods(http.MethodGet)
	router.HandleFunc("/api/boards/{board}/threads", h.GetThreads).Methods(http.MethodGet)
	router.HandleFunc("/api/boards/{board}/threads", h.CreateThread).Methods(http.MethodPost)
	router.HandleFunc("/api/boards/{board}/threads/{thread}", h.GetThread).Methods(http.MethodGet)
	router.HandleFunc("/api/boards/{board}/threads/{thread}/responses", h.GetResponses).Methods(http.MethodGet)
	router.HandleFunc("/api/boards/{board}/threads/{thread}/responses", h.CreateResponse).Methods(http.MethodPost)
	router.HandleFunc("/api/verification", h.Verification).Methods(http.MethodPost)
	router.HandleFunc("/bbsmenu.html", h.Bbsmenu).Methods(http.MethodGet)
	router.HandleFunc("/test/bbs.cgi", h.BbsCgi).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/{board}/SETTING.TXT", h.BoardSettings).Methods(http.MethodGet)
	router.HandleFunc("/{board}/subject.txt", h.Subject).Methods(http.MethodGet)
	router.HandleFunc("/{board}/dat/{thread:[0-9]+}.dat", h.Dat).Methods(http.MethodGet)
	return router
}

func newTestHandler() (*Handler, *mockBoardService, *mockPostService, *mockIdentityService) {
	board := &mockBoardService{}
	post := &mockPostService{}
	identity := &mockIdentityService{}
	return New(board, post, identity, nil, legacy.PolicyReplace), board, post, identity
}
