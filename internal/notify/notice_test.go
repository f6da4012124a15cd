package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_PushAndRecent(t *testing.T) {
	l := NewLog(10)

	l.Push(LevelError, "saving task 3 failed")
	l.Push(LevelWarn, "reorder not saved")

	got := l.Recent(10)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, LevelError, got[0].Level)
	assert.Equal(t, "reorder not saved", got[1].Message)
	assert.False(t, got[1].At.IsZero())
}

func TestLog_RingDropsOldest(t *testing.T) {
	l := NewLog(3)

	for i := 1; i <= 5; i++ {
		l.Push(LevelInfo, fmt.Sprintf("notice %d", i))
	}

	got := l.Recent(10)
	require.Len(t, got, 3)
	assert.Equal(t, "notice 3", got[0].Message)
	assert.Equal(t, "notice 5", got[2].Message)
}

func TestLog_RecentLimits(t *testing.T) {
	l := NewLog(10)
	l.Push(LevelInfo, "a")
	l.Push(LevelInfo, "b")

	got := l.Recent(1)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Message)
}
