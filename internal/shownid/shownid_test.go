package shownid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateDeterministicWithinDay(t *testing.T) {
	g := New("test-key")
	// 11:00 and 14:00 JST, same day
	now := time.Date(2025, 9, 21, 2, 0, 0, 0, time.UTC)

	a := g.generateAt(now, "192.0.2.1", "b")
	b := g.generateAt(now.Add(3*time.Hour), "192.0.2.1", "b")

	assert.Len(t, a, 8)
	assert.Equal(t, a, b)
}

func TestGenerateRotatesAtDayBoundary(t *testing.T) {
	g := New("test-key")
	// 14:59 UTC is 23:59 JST; one minute later the JST date flips
	beforeMidnight := time.Date(2025, 9, 21, 14, 59, 0, 0, time.UTC)
	afterMidnight := beforeMidnight.Add(time.Minute)

	assert.NotEqual(t,
		g.generateAt(beforeMidnight, "192.0.2.1", "b"),
		g.generateAt(afterMidnight, "192.0.2.1", "b"))
}

func TestGenerateVariesByBoardAndIp(t *testing.T) {
	g := New("test-key")
	now := time.Now()

	assert.NotEqual(t, g.generateAt(now, "192.0.2.1", "b"), g.generateAt(now, "192.0.2.1", "news"))
	assert.NotEqual(t, g.generateAt(now, "192.0.2.1", "b"), g.generateAt(now, "192.0.2.2", "b"))
}

func TestGenerateVariesByKey(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t,
		New("k1").generateAt(now, "192.0.2.1", "b"),
		New("k2").generateAt(now, "192.0.2.1", "b"))
}
