package plugin

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/14ChannelBBS/Qua/internal/domain"
)

// Shuffle adds a shuffle tag: text wrapped in <shuffle></shuffle> (already
// HTML-escaped by the sanitizer when it reaches the hook) is replaced with a
// placeholder at post time; the scrambled text lives in a response attribute
// and is substituted per-device at render time.
type Shuffle struct {
	pattern *regexp.Regexp
}

func NewShuffle() *Shuffle {
	return &Shuffle{
		pattern: regexp.MustCompile(`&lt;shuffle&gt;(.*?)&lt;/shuffle&gt;`),
	}
}

func (s *Shuffle) Id() string      { return "shuffle" }
func (s *Shuffle) Name() string    { return "シャッフルプラグイン" }
func (s *Shuffle) Version() string { return "1.0.0" }

func (s *Shuffle) shuffle(text string) (string, []string) {
	var originals []string
	out := s.pattern.ReplaceAllStringFunc(text, func(m string) string {
		inner := s.pattern.FindStringSubmatch(m)[1]
		originals = append(originals, inner)
		return fmt.Sprintf("<shuffle=%d>", len(originals)-1)
	})

	shuffled := make([]string, len(originals))
	for i, t := range originals {
		runes := []rune(t)
		rand.Shuffle(len(runes), func(a, b int) { runes[a], runes[b] = runes[b], runes[a] })
		shuffled[i] = string(runes)
	}
	return out, shuffled
}

func (s *Shuffle) OnThreadPost(_ context.Context, event *domain.ThreadPostEvent) error {
	content, shuffled := s.shuffle(event.Content)
	event.Content = content
	if len(shuffled) > 0 {
		event.Attributes["shuffleTexts"] = shuffled
	}
	return nil
}

func (s *Shuffle) OnResponsePost(_ context.Context, event *domain.ResponsePostEvent) error {
	content, shuffled := s.shuffle(event.Content)
	event.Content = content
	if len(shuffled) > 0 {
		event.Attributes["shuffleTexts"] = shuffled
	}
	return nil
}

func (s *Shuffle) OnRenderingResponse(event *domain.RenderingResponseEvent) error {
	if event.Response == nil {
		return nil
	}
	for i, t := range shuffleTexts(event.Response.Attributes) {
		var info string
		if event.Device == domain.DeviceMonazilla {
			info = fmt.Sprintf(" <br> シャッフル 原文→「%s」", t)
		} else {
			info = fmt.Sprintf(`<br><small><span style="color: red;">シャッフル</span> 「%s」</small>`, t)
		}
		event.Response.Content = strings.Replace(
			event.Response.Content,
			fmt.Sprintf("<shuffle=%d>", i),
			t+info,
			1,
		)
	}
	return nil
}

// shuffleTexts tolerates both the in-flight []string and the []any that a
// jsonb round trip produces.
func shuffleTexts(attrs domain.Attributes) []string {
	switch v := attrs["shuffleTexts"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
