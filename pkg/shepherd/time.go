package shepherd

import "time"

// nowSeconds is the default wall clock for joinTime/startTime stamping.
// Kept as its own function (rather than inlining time.Now().Unix()) so
// tests can substitute a deterministic clock via Options.Clock.
func nowSeconds() int64 {
	return time.Now().Unix()
}
