package presence

import "time"

// OnlineThreshold is the window inside which a last-seen timestamp still
// counts as "online". The boundary is exclusive: a timestamp exactly this
// old is no longer online.
const OnlineThreshold = 2 * time.Minute

// IsOnline reports whether lastSeen is recent enough to display as Online.
// A nil lastSeen never renders Online.
func IsOnline(lastSeen *time.Time, now time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) < OnlineThreshold
}
