package player

import (
	"fmt"
	"time"
)

// Placeholder is the duration label shown when nothing is playing.
const Placeholder = "--:--/--:--"

// FormatLabel renders elapsed and total as "mm:ss / mm:ss". Seconds are
// truncated, not rounded.
func FormatLabel(elapsed, total time.Duration) string {
	return clock(elapsed) + " / " + clock(total)
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Percent returns floor(elapsed/total*100) clamped to [0, 100]. A zero or
// negative total yields 0.
func Percent(elapsed, total time.Duration) int {
	if total <= 0 || elapsed <= 0 {
		return 0
	}
	p := int(elapsed * 100 / total)
	return min(p, 100)
}
