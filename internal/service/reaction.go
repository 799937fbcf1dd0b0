package service

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/14ChannelBBS/Qua/internal/domain"
	"github.com/14ChannelBBS/Qua/internal/emoji"
	internal_errors "github.com/14ChannelBBS/Qua/internal/errors"
)

// A response holds at most this many distinct reactions.
const maxReactionsPerResponse = 20

var reactionLine = regexp.MustCompile(`^&gt;&gt;(\d+)\s+(\S+)$`)

type ReactionStorage interface {
	UpdateReactions(responseId string, reactions domain.Reactions) error
}

type Reaction struct {
	storage ReactionStorage
}

func NewReaction(storage ReactionStorage) *Reaction {
	return &Reaction{storage}
}

type reactionCommand struct {
	target int // 1-based response index within the thread
	glyph  string
}

// extract pulls ">>N emoji" lines out of sanitized content. Remaining lines
// are rejoined in order; reaction lines leave no trace in the body.
func extract(content string) (string, []reactionCommand) {
	var kept []string
	var commands []reactionCommand
	for _, line := range strings.Split(content, "\n") {
		m := reactionLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			kept = append(kept, line)
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			kept = append(kept, line)
			continue
		}
		// sanitization escaped the glyph into character references
		commands = append(commands, reactionCommand{target: n, glyph: html.UnescapeString(m[2])})
	}
	return strings.Join(kept, "\n"), commands
}

// Apply toggles userId's vote on the targeted responses and persists each
// mutated reaction set whole. It returns the responses it changed.
func (s *Reaction) Apply(userId domain.IdentityId, responses []domain.Response, commands []reactionCommand) ([]domain.Response, error) {
	mutated := map[int]bool{}
	for _, cmd := range commands {
		if cmd.target < 1 || cmd.target > len(responses) {
			return nil, &internal_errors.BackendError{
				Code:    "RESPONSE_NOT_FOUND",
				Message: fmt.Sprintf(">>%dというレスは存在しません。", cmd.target),
			}
		}

		validity, normalized := emoji.Check(cmd.glyph)
		if validity == emoji.Invalid {
			return nil, &internal_errors.BackendError{
				Code:    "UNKNOWN_EMOJI",
				Message: "不明な絵文字です。",
			}
		}

		target := &responses[cmd.target-1]
		if !target.Reactions.Has(normalized) && len(target.Reactions) >= maxReactionsPerResponse {
			return nil, &internal_errors.BackendError{
				Code:    "TOO_MANY_REACTIONS",
				Message: fmt.Sprintf("1つのレスに付けられるリアクションは%d種類までです。", maxReactionsPerResponse),
			}
		}

		target.Reactions = target.Reactions.Toggle(domain.Emoji{Name: normalized}, userId)
		mutated[cmd.target-1] = true
	}

	var changed []domain.Response
	for i := range responses {
		if !mutated[i] {
			continue
		}
		if err := s.storage.UpdateReactions(responses[i].Id, responses[i].Reactions); err != nil {
			return nil, err
		}
		changed = append(changed, responses[i])
	}
	return changed, nil
}
