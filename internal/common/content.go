package common

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MessageKind represents the message content kind stored alongside each message
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindEmoji MessageKind = "emoji"
	KindAudio MessageKind = "audio"
	KindFile  MessageKind = "file"
	KindCall  MessageKind = "call"
)

// String returns the string representation
func (mk MessageKind) String() string {
	return string(mk)
}

// IsValid checks if the message kind is valid
func (mk MessageKind) IsValid() bool {
	switch mk {
	case KindText, KindEmoji, KindAudio, KindFile, KindCall:
		return true
	}
	return false
}

// NormalizeKind maps unknown kinds to text, matching the write path contract
func NormalizeKind(kind string) MessageKind {
	mk := MessageKind(strings.ToLower(kind))
	if mk.IsValid() {
		return mk
	}
	return KindText
}

// Attachment is the small object serialized into file/audio message content
type Attachment struct {
	URL      string `json:"url"`
	FileName string `json:"fileName,omitempty"`
}

// ParseAttachment extracts an attachment from message content. A JSON object
// with a url field, or a bare path string, is treated as an attachment.
func ParseAttachment(content string) (*Attachment, bool) {
	var att Attachment
	if err := json.Unmarshal([]byte(content), &att); err == nil && att.URL != "" {
		return &att, true
	}
	if strings.HasPrefix(content, "/") {
		return &Attachment{URL: content}, true
	}
	return nil, false
}

var imageExtRegex = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|bmp|avif)(\?.*)?$`)

// IsImageFile decides image-ness by file-extension pattern matching on the
// filename, falling back to the URL when no filename is present.
func IsImageFile(url, fileName string) bool {
	check := fileName
	if check == "" {
		check = url
	}
	return imageExtRegex.MatchString(strings.ToLower(check))
}

// SearchableText returns the text a message is matched against when filtering.
// Attachment kinds are matched on their filename/URL rather than raw JSON.
func SearchableText(content string, kind MessageKind) string {
	if kind == KindFile || kind == KindAudio {
		if att, ok := ParseAttachment(content); ok {
			fields := make([]string, 0, 2)
			if att.FileName != "" {
				fields = append(fields, att.FileName)
			}
			if att.URL != "" {
				fields = append(fields, att.URL)
			}
			if len(fields) > 0 {
				return strings.Join(fields, " ")
			}
		}
	}
	return content
}

// CallLog is the content payload of a call-type message. It is a display-only
// synthetic record, not a live call session.
type CallLog struct {
	Type            string `json:"type"`      // audio | video
	Direction       string `json:"direction"` // incoming | outgoing
	Status          string `json:"status"`    // accepted | declined | missed
	DurationSeconds *int   `json:"durationSeconds,omitempty"`
}

// ParseCallLog validates and extracts a call-log payload from message content
func ParseCallLog(content string) (*CallLog, bool) {
	var cl CallLog
	if err := json.Unmarshal([]byte(content), &cl); err != nil {
		return nil, false
	}
	if cl.Type != "audio" && cl.Type != "video" {
		return nil, false
	}
	if cl.Direction != "incoming" && cl.Direction != "outgoing" {
		return nil, false
	}
	if cl.Status != "accepted" && cl.Status != "declined" && cl.Status != "missed" {
		return nil, false
	}
	return &cl, true
}
