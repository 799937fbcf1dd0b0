package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/plugin"
	"github.com/14ChannelBBS/Qua/internal/ratelimit"
	"github.com/14ChannelBBS/Qua/internal/shownid"
	"github.com/14ChannelBBS/Qua/internal/tasks"
)

// --- Mocks ---

// mockStorage is an in-memory stand-in for the pg storage. Behavior can be
// overridden per test through the *Func fields.
type mockStorage struct {
	mu         sync.Mutex
	boards     map[string]domain.Board
	threads    map[string]domain.Thread
	responses  map[string][]domain.Response
	identities map[string]domain.Identity

	createThreadFunc   func(thread domain.Thread) error
	createResponseFunc func(response domain.Response, host string, bump bool) error

	recordedIps []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		boards:     map[string]domain.Board{},
		threads:    map[string]domain.Thread{},
		responses:  map[string][]domain.Response{},
		identities: map[string]domain.Identity{},
	}
}

func (m *mockStorage) GetBoards() ([]domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var boards []domain.Board
	for _, b := range m.boards {
		boards = append(boards, b)
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].Id < boards[j].Id })
	return boards, nil
}

func (m *mockStorage) GetBoard(id domain.BoardId) (domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	board, ok := m.boards[id]
	if !ok {
		return domain.Board{}, &internal_errors.NotFound{What: "Board"}
	}
	return board, nil
}

func (m *mockStorage) GetThreads(board domain.BoardId) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var threads []domain.Thread
	for _, t := range m.threads {
		if t.Board != board || t.Deleted {
			continue
		}
		t.Count = len(m.responses[t.StorageId()])
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].SortKey > threads[j].SortKey })
	return threads, nil
}

func (m *mockStorage) GetThread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	thread, ok := m.threads[domain.ThreadStorageId(board, key)]
	if !ok || thread.Deleted {
		return domain.Thread{}, &internal_errors.NotFound{What: "Thread"}
	}
	thread.Count = len(m.responses[thread.StorageId()])
	return thread, nil
}

func (m *mockStorage) GetResponses(parentId string) ([]domain.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Response{}, m.responses[parentId]...), nil
}

func (m *mockStorage) CreateThread(thread domain.Thread) error {
	if m.createThreadFunc != nil {
		if err := m.createThreadFunc(thread); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.threads[thread.StorageId()]; exists {
		return internal_errors.ErrAlreadyExists
	}
	m.threads[thread.StorageId()] = thread
	return nil
}

func (m *mockStorage) CreateResponse(response domain.Response, host string, bump bool) error {
	if m.createResponseFunc != nil {
		if err := m.createResponseFunc(response, host, bump); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[response.ParentId] = append(m.responses[response.ParentId], response)
	if bump {
		thread := m.threads[response.ParentId]
		thread.SortKey = response.CreatedAt.Unix()
		m.threads[response.ParentId] = thread
	}
	return nil
}

func (m *mockStorage) UpdateReactions(responseId string, reactions domain.Reactions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for parentId, responses := range m.responses {
		for i := range responses {
			if responses[i].Id == responseId {
				m.responses[parentId][i].Reactions = reactions
				return nil
			}
		}
	}
	return &internal_errors.NotFound{What: "Response"}
}

func (m *mockStorage) CreateIdentity(identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[identity.Token] = identity
	return nil
}

func (m *mockStorage) GetIdentityByToken(token string) (domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[token]
	if !ok {
		return domain.Identity{}, &internal_errors.NotFound{What: "Identity"}
	}
	return identity, nil
}

func (m *mockStorage) AddIdentityIp(token, addr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordedIps = append(m.recordedIps, addr)
	return nil
}

// fakeLimiter records checks and fails when err is set.
type fakeLimiter struct {
	mu      sync.Mutex
	err     error
	checked []string
}

func (f *fakeLimiter) CheckAndArm(_ context.Context, identityId string, action ratelimit.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.checked = append(f.checked, string(action)+":"+identityId)
	return nil
}

type broadcastEvent struct {
	Room string
	Type string
	Body any
}

type fakeHub struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (f *fakeHub) Broadcast(room, eventType string, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, broadcastEvent{room, eventType, body})
}

func (f *fakeHub) byType(eventType string) []broadcastEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []broadcastEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// syncPool runs submitted tasks inline so tests observe their effects
// immediately.
type syncPool struct{}

func (syncPool) Submit(task tasks.Task) bool {
	_ = task(context.Background())
	return true
}

type stubVerifier struct {
	ok  bool
	err error
}

func (s stubVerifier) Verify(context.Context, string, string) (bool, error) {
	return s.ok, s.err
}

// --- Helpers ---

const (
	testBoardId = "b"
	testToken   = "token-abc"
	testIp      = "203.0.113.7"
)

type postFixture struct {
	storage *mockStorage
	limiter *fakeLimiter
	hub     *fakeHub
	post    *Post
}

func newPostFixture(plugins ...plugin.Plugin) *postFixture {
	storage := newMockStorage()
	storage.boards[testBoardId] = domain.Board{Id: testBoardId, Name: "Test", AnonName: "名無しさん"}
	storage.identities[testToken] = domain.Identity{
		Token: testToken,
		Id:    "Ab3dEf7h",
		Ips:   pq.StringArray{testIp},
	}

	limiter := &fakeLimiter{}
	hub := &fakeHub{}
	identity := NewIdentity(storage, stubVerifier{ok: true}, "site-key")
	post := NewPost(
		storage,
		identity,
		limiter,
		plugin.NewRegistry(plugins...),
		NewReaction(storage),
		shownid.New("shown-id-key"),
		syncPool{},
		hub,
		1000,
	)
	return &postFixture{storage: storage, limiter: limiter, hub: hub, post: post}
}

func (f *postFixture) seedThread(key int64) domain.Thread {
	thread := domain.Thread{
		Key:          key,
		Board:        testBoardId,
		Title:        "Seed",
		CreatedAt:    time.Unix(key, 0).UTC(),
		SortKey:      key,
		OwnerId:      "Ab3dEf7h",
		OwnerShownId: "AAAABBBB",
	}
	f.storage.threads[thread.StorageId()] = thread
	return thread
}

func (f *postFixture) seedResponse(parentId, id string) domain.Response {
	response := domain.Response{
		Id:        id,
		ParentId:  parentId,
		CreatedAt: time.Now().UTC(),
		AuthorId:  "Ab3dEf7h",
		ShownId:   "AAAABBBB",
		Content:   "seed content",
	}
	f.storage.responses[parentId] = append(f.storage.responses[parentId], response)
	return response
}

func cookiesWithToken() map[string]string {
	return map[string]string{TokenCookie: testToken}
}
