package utils

import (
	"fmt"
	"time"
)

// TimestampIDs issues ids of the form "<prefix>-<unix millis>". When two ids
// are requested within the same millisecond the counter is bumped so ids never
// repeat. Not safe for concurrent use; callers hold their own lock.
type TimestampIDs struct {
	prefix string
	last   int64
}

// NewTimestampIDs creates a generator for the given prefix.
func NewTimestampIDs(prefix string) *TimestampIDs {
	return &TimestampIDs{prefix: prefix}
}

// Next returns a fresh id derived from now.
func (g *TimestampIDs) Next(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", g.prefix, ms)
}
