package timer

import (
	"fmt"
	"time"

	"github.com/hammamikhairi/ottoclient/internal/domain"
)

// Remaining returns how much of t is left at now, clamped to [0, duration].
// It is computed on demand and never stored.
func Remaining(t domain.Timer, now time.Time) time.Duration {
	total := t.Length()
	r := total - now.Sub(t.StartedAt)
	if r < 0 {
		return 0
	}
	if r > total {
		return total
	}
	return r
}

// Expired reports whether t has run out at now.
func Expired(t domain.Timer, now time.Time) bool {
	return Remaining(t, now) == 0
}

// Format renders a remaining duration as m:ss, rounding partial seconds up
// so a timer only reads 0:00 once it has expired.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
