package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"

	"github.com/14ChannelBBS/Qua/internal/api"
	"github.com/14ChannelBBS/Qua/internal/domain"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
	"github.com/14ChannelBBS/Qua/internal/plugin"
	"github.com/14ChannelBBS/Qua/internal/ratelimit"
	"github.com/14ChannelBBS/Qua/internal/realtime"
	"github.com/14ChannelBBS/Qua/internal/sanitize"
	"github.com/14ChannelBBS/Qua/internal/shownid"
	"github.com/14ChannelBBS/Qua/internal/tasks"
	"github.com/14ChannelBBS/Qua/internal/tripcode"
)

// Display-length limits advertised to legacy clients through SETTING.TXT.
const (
	maxTitleLength   = 192
	maxNameLength    = 128
	maxContentLength = 9192
	maxNewlines      = 16
)

// ErrPostedButNoContent: the whole body was consumed as reaction commands.
// The reactions were applied, so the submission succeeded without creating a
// response.
var ErrPostedButNoContent = &internal_errors.BackendError{
	Code:    "POSTED_BUT_NO_CONTENT",
	Message: "本文が全てリアクションとして処理されました。",
}

type PostStorage interface {
	GetBoard(id domain.BoardId) (domain.Board, error)
	GetThread(board domain.BoardId, key domain.ThreadKey) (domain.Thread, error)
	GetThreads(board domain.BoardId) ([]domain.Thread, error)
	GetResponses(parentId string) ([]domain.Response, error)
	CreateThread(thread domain.Thread) error
	CreateResponse(response domain.Response, host string, bump bool) error
}

type RateLimiter interface {
	CheckAndArm(ctx context.Context, identityId string, action ratelimit.Action) error
}

type Broadcaster interface {
	Broadcast(room, eventType string, body any)
}

type TaskSubmitter interface {
	Submit(task tasks.Task) bool
}

// Post drives the whole posting pipeline: identity, sanitation, rate limit,
// reaction extraction, plugin hooks, persistence, then detached bookkeeping
// and fan-out.
type Post struct {
	storage      PostStorage
	identity     *Identity
	limiter      RateLimiter
	plugins      *plugin.Registry
	reactions    *Reaction
	shownId      *shownid.Generator
	pool         TaskSubmitter
	hub          Broadcaster
	maxResponses int
}

func NewPost(
	storage PostStorage,
	identity *Identity,
	limiter RateLimiter,
	plugins *plugin.Registry,
	reactions *Reaction,
	shownId *shownid.Generator,
	pool TaskSubmitter,
	hub Broadcaster,
	maxResponses int,
) *Post {
	return &Post{storage, identity, limiter, plugins, reactions, shownId, pool, hub, maxResponses}
}

func boardRoom(board domain.BoardId) string {
	return "board:" + board
}

func threadRoom(parentId string) string {
	return "thread:" + parentId
}

// processName sanitizes the display name and replaces a "#secret" suffix
// with its deterministic trip. An empty name part falls back to the board's
// anonymous name, so a bare trip still reads "名無しさん◆xxx".
func processName(raw, anonName string) string {
	name, trip := raw, ""
	if i := strings.Index(raw, "#"); i >= 0 {
		name, trip = raw[:i], tripcode.Generate(raw[i:])
	}
	name = sanitize.Name(name)
	if name == "" {
		name = anonName
	}
	return name + trip
}

func validateContent(content string) error {
	length := sanitize.DisplayLength(content)
	if length < 1 {
		return &internal_errors.ContentTooShort{Field: "本文", Min: 1}
	}
	if length > maxContentLength {
		return &internal_errors.ContentTooLong{Field: "本文", Max: maxContentLength}
	}
	if strings.Count(content, "\n") > maxNewlines {
		return &internal_errors.ContentTooLong{Field: "改行", Max: maxNewlines}
	}
	return nil
}

func validateName(name string) error {
	if sanitize.DisplayLength(name) > maxNameLength {
		return &internal_errors.ContentTooLong{Field: "名前", Max: maxNameLength}
	}
	return nil
}

// postAttributes carries identity trust and the mail field onto the stored
// post so renderers need no identity lookup.
func postAttributes(attrs domain.Attributes, identity *domain.Identity, command string) domain.Attributes {
	if attrs == nil {
		attrs = domain.Attributes{}
	}
	if command != "" {
		attrs["email"] = command
	}
	if identity.Cap != nil {
		attrs["cap"] = *identity.Cap
		if identity.CapColor != nil {
			attrs["cap_color"] = *identity.CapColor
		}
	}
	return attrs
}

func (s *Post) CreateThread(ctx context.Context, data domain.ThreadCreationData) (domain.Thread, error) {
	board, err := s.storage.GetBoard(data.Board)
	if err != nil {
		return domain.Thread{}, err
	}

	identity, command, err := s.identity.Resolve(data.Command, data.Cookies)
	if err != nil {
		return domain.Thread{}, err
	}

	title := sanitize.Title(data.Title)
	if length := sanitize.DisplayLength(title); length < 1 {
		return domain.Thread{}, &internal_errors.ContentTooShort{Field: "タイトル", Min: 1}
	} else if length > maxTitleLength {
		return domain.Thread{}, &internal_errors.ContentTooLong{Field: "タイトル", Max: maxTitleLength}
	}
	name := processName(data.Name, board.AnonName)
	if err := validateName(name); err != nil {
		return domain.Thread{}, err
	}
	content := sanitize.Content(data.Content)
	if err := validateContent(content); err != nil {
		return domain.Thread{}, err
	}

	if err := s.limiter.CheckAndArm(ctx, identity.Id, ratelimit.ActionThread); err != nil {
		return domain.Thread{}, err
	}

	event := &domain.ThreadPostEvent{
		Board:      &board,
		Title:      title,
		Name:       name,
		Command:    command,
		Content:    content,
		Attributes: domain.Attributes{},
		Identity:   &identity,
		ShownId:    s.shownId.Generate(data.IpAddress, board.Id),
	}
	if err := s.plugins.FireThreadPost(ctx, event); err != nil {
		return domain.Thread{}, err
	}

	thread, err := s.allocateThread(ctx, board.Id, event, identity.Id)
	if err != nil {
		return domain.Thread{}, err
	}

	op := domain.Response{
		Id:         uuid.NewString(),
		ParentId:   thread.StorageId(),
		CreatedAt:  thread.CreatedAt,
		AuthorId:   identity.Id,
		ShownId:    event.ShownId,
		Name:       event.Name,
		Content:    event.Content,
		Attributes: postAttributes(domain.Attributes{}, &identity, event.Command),
	}
	if err := s.storage.CreateResponse(op, data.IpAddress, false); err != nil {
		return domain.Thread{}, err
	}
	thread.Count = 1

	s.afterPost(&identity, data.IpAddress, board.Id)
	s.pool.Submit(func(context.Context) error {
		s.hub.Broadcast(threadRoom(thread.StorageId()), realtime.EventNewResponse, map[string]any{
			"response": api.FromResponse(op),
		})
		return nil
	})

	return thread, nil
}

// allocateThread claims the current epoch second as the thread key. On a
// collision the insert fails on the unique key and is retried a second later,
// when the clock has moved on.
func (s *Post) allocateThread(ctx context.Context, board domain.BoardId, event *domain.ThreadPostEvent, ownerId domain.IdentityId) (domain.Thread, error) {
	var thread domain.Thread
	err := retry.Do(
		func() error {
			key := time.Now().Unix()
			thread = domain.Thread{
				Key:          key,
				Board:        board,
				Title:        event.Title,
				CreatedAt:    time.Unix(key, 0).UTC(),
				SortKey:      key,
				OwnerId:      ownerId,
				OwnerShownId: event.ShownId,
				Attributes:   event.Attributes,
			}
			return s.storage.CreateThread(thread)
		},
		retry.Attempts(10),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, internal_errors.ErrAlreadyExists)
		}),
	)
	if err != nil {
		return domain.Thread{}, err
	}
	return thread, nil
}

func (s *Post) CreateResponse(ctx context.Context, data domain.ResponseCreationData) (domain.Response, error) {
	board, err := s.storage.GetBoard(data.Board)
	if err != nil {
		return domain.Response{}, err
	}
	thread, err := s.storage.GetThread(data.Board, data.ThreadKey)
	if err != nil {
		return domain.Response{}, err
	}

	identity, command, err := s.identity.Resolve(data.Command, data.Cookies)
	if err != nil {
		return domain.Response{}, err
	}

	name := processName(data.Name, board.AnonName)
	if err := validateName(name); err != nil {
		return domain.Response{}, err
	}
	content := sanitize.Content(data.Content)
	if err := validateContent(content); err != nil {
		return domain.Response{}, err
	}

	if thread.Count >= thread.MaxResponses(s.maxResponses) {
		return domain.Response{}, &internal_errors.BackendError{
			Code:    "MAX_RESPONSE_COUNT",
			Message: "このスレッドは最大レス数に達しました。",
		}
	}

	if err := s.limiter.CheckAndArm(ctx, identity.Id, ratelimit.ActionResponse); err != nil {
		return domain.Response{}, err
	}

	remaining, commands := extract(content)
	var changed []domain.Response
	if len(commands) > 0 {
		existing, err := s.storage.GetResponses(thread.StorageId())
		if err != nil {
			return domain.Response{}, err
		}
		changed, err = s.reactions.Apply(identity.Id, existing, commands)
		if err != nil {
			return domain.Response{}, err
		}
	}

	if strings.TrimSpace(remaining) == "" {
		if len(commands) == 0 {
			return domain.Response{}, &internal_errors.ContentTooShort{Field: "本文", Min: 1}
		}
		s.afterPost(&identity, data.IpAddress, thread.Board)
		s.broadcastResponses(thread.StorageId(), nil, changed)
		return domain.Response{}, ErrPostedButNoContent
	}

	event := &domain.ResponsePostEvent{
		Thread:     &thread,
		Name:       name,
		Command:    command,
		Content:    remaining,
		Attributes: domain.Attributes{},
		Identity:   &identity,
		ShownId:    s.shownId.Generate(data.IpAddress, thread.Board),
	}
	if err := s.plugins.FireResponsePost(ctx, event); err != nil {
		return domain.Response{}, err
	}

	response := domain.Response{
		Id:         uuid.NewString(),
		ParentId:   thread.StorageId(),
		CreatedAt:  time.Now().UTC(),
		AuthorId:   identity.Id,
		ShownId:    event.ShownId,
		Name:       event.Name,
		Content:    event.Content,
		Reactions:  domain.Reactions{},
		Attributes: postAttributes(event.Attributes, &identity, event.Command),
	}
	bump := !strings.Contains(event.Command, "sage")
	if err := s.storage.CreateResponse(response, data.IpAddress, bump); err != nil {
		return domain.Response{}, err
	}

	s.afterPost(&identity, data.IpAddress, thread.Board)
	s.broadcastResponses(thread.StorageId(), &response, changed)

	return response, nil
}

// afterPost runs the detached bookkeeping: identity IP append and the board
// thread-list refresh event. Neither may block or fail the poster's request.
// The IP append is skipped when the resolved record already carries it.
func (s *Post) afterPost(identity *domain.Identity, ip string, board domain.BoardId) {
	if !identity.HasIp(ip) {
		s.pool.Submit(func(context.Context) error {
			return s.identity.RecordIp(identity.Token, ip)
		})
	}
	s.pool.Submit(func(context.Context) error {
		threads, err := s.storage.GetThreads(board)
		if err != nil {
			return err
		}
		s.hub.Broadcast(boardRoom(board), realtime.EventUpdateThreads, map[string]any{
			"board":   board,
			"threads": api.FromThreads(threads),
		})
		return nil
	})
}

func (s *Post) broadcastResponses(parentId string, created *domain.Response, changed []domain.Response) {
	s.pool.Submit(func(context.Context) error {
		body := map[string]any{
			"mutated": api.FromResponses(changed),
		}
		if created != nil {
			body["response"] = api.FromResponse(*created)
		}
		s.hub.Broadcast(threadRoom(parentId), realtime.EventNewResponse, body)
		return nil
	})
}

// RenderResponses runs the per-device render hooks over copies of responses.
// Hook failures surface in logs only; storage is never touched.
func (s *Post) RenderResponses(thread *domain.Thread, responses []domain.Response, device domain.Device) []domain.Response {
	rendered := make([]domain.Response, len(responses))
	copy(rendered, responses)
	for i := range rendered {
		s.plugins.FireRenderingResponse(&domain.RenderingResponseEvent{
			Thread:   thread,
			Response: &rendered[i],
			Device:   device,
		})
	}
	return rendered
}
