package client

import (
	"fmt"
	"strings"
	"time"

	"whispr/internal/common"
	"whispr/internal/presence"
)

// GroupWindow is the maximum gap between consecutive messages of one
// sender that still renders them as a single visual block. The boundary
// is exclusive: a gap of exactly two minutes starts a new group.
const GroupWindow = 2 * time.Minute

// MessageGroup is a run of consecutive messages from one sender
type MessageGroup struct {
	SenderID    string
	SenderName  string
	SenderImage *string
	Messages    []Message
}

// GroupMessages splits an ordered history into render groups. A message
// joins the previous group only when the sender matches and the gap to
// the previous message is under GroupWindow. Call-log entries always
// stand alone on both sides.
func GroupMessages(messages []Message) []MessageGroup {
	groups := make([]MessageGroup, 0, len(messages))
	for _, m := range messages {
		if len(groups) > 0 && joinable(&groups[len(groups)-1], m) {
			g := &groups[len(groups)-1]
			g.Messages = append(g.Messages, m)
			continue
		}
		groups = append(groups, MessageGroup{
			SenderID:    m.SenderID,
			SenderName:  m.SenderName,
			SenderImage: m.SenderImage,
			Messages:    []Message{m},
		})
	}
	return groups
}

func joinable(g *MessageGroup, m Message) bool {
	if common.NormalizeKind(m.Kind) == common.KindCall {
		return false
	}
	last := g.Messages[len(g.Messages)-1]
	if common.NormalizeKind(last.Kind) == common.KindCall {
		return false
	}
	if g.SenderID != m.SenderID {
		return false
	}
	return m.CreatedAt.Sub(last.CreatedAt) < GroupWindow
}

// StatusLine renders the counterpart's presence for the conversation
// header. LastActivityAt is the fallback when presence was never
// reported, so the header still says something useful.
func StatusLine(lastSeen *time.Time, lastActivity *time.Time, now time.Time) string {
	if presence.IsOnline(lastSeen, now) {
		return "Online"
	}
	ts := lastSeen
	if ts == nil {
		ts = lastActivity
	}
	if ts == nil {
		return "last seen long ago"
	}
	return FormatLastSeen(*ts, now)
}

// FormatLastSeen renders a timestamp in the buckets users expect of a
// last-seen line: minutes, hours, "yesterday", days, then an absolute
// date past a week.
func FormatLastSeen(ts time.Time, now time.Time) string {
	diff := now.Sub(ts)
	if diff < 0 {
		diff = 0
	}

	minutes := int(diff / time.Minute)
	switch {
	case minutes < 1:
		return "last seen just now"
	case minutes < 60:
		return fmt.Sprintf("last seen %s ago", plural(minutes, "minute"))
	}

	hours := int(diff / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("last seen %s ago", plural(hours, "hour"))
	}

	days := int(diff / (24 * time.Hour))
	switch {
	case days == 1:
		return "last seen yesterday"
	case days < 7:
		return fmt.Sprintf("last seen %d days ago", days)
	}

	if ts.Year() == now.Year() {
		return "last seen on " + ts.Format("Jan 2")
	}
	return "last seen on " + ts.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FilterMessages narrows a history to entries matching an in-chat search
// query. Matching is case-insensitive on the searchable text of each
// message; call-log entries always pass so the call history never
// disappears mid-search. An empty query returns the input unchanged.
func FilterMessages(messages []Message, query string) []Message {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return messages
	}

	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		kind := common.NormalizeKind(m.Kind)
		if kind == common.KindCall {
			out = append(out, m)
			continue
		}
		text := common.SearchableText(m.Content, kind)
		if strings.Contains(strings.ToLower(text), q) {
			out = append(out, m)
		}
	}
	return out
}

// CallLabel renders a call-log payload to its single display line
func CallLabel(cl *common.CallLog) string {
	kind := "Voice"
	if cl.Type == "video" {
		kind = "Video"
	}

	switch cl.Status {
	case "missed":
		return fmt.Sprintf("Missed %s call", strings.ToLower(kind))
	case "declined":
		return fmt.Sprintf("Declined %s call", strings.ToLower(kind))
	}

	label := kind + " call"
	if cl.DurationSeconds != nil {
		label += " · " + FormatCallDuration(*cl.DurationSeconds)
	}
	return label
}

// FormatCallDuration renders seconds as m:ss
func FormatCallDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
