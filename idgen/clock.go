package idgen

import "time"

var processStart = time.Now()

// monotonicNowNs uses the runtime's monotonic clock reading (time.Since
// never observes wall-clock adjustments) so NextTimestamp's strictly
// increasing guarantee holds even across NTP corrections.
func monotonicNowNs() int64 {
	return int64(time.Since(processStart))
}
