package notes

import (
	"time"
	"unicode/utf8"

	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/oklog/ulid/v2"
)

const MaxContentLength = 500

// Note is a short text owned by a user. Comments are notes whose owner is an
// inactive ad-hoc user.
type Note struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Comment  bool      `json:"-"` // left by a visitor, owned by an ad-hoc user
}

// New returns a note with a time ordered id.
func New(userID, content string, now time.Time) *Note {
	return &Note{
		ID:       ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:   userID,
		Content:  content,
		Created:  now,
		Modified: now,
	}
}

// ValidContent reports whether content fits a note.
func ValidContent(content string) bool {
	return utf8.RuneCountInString(content) <= MaxContentLength
}

func (n *Note) Update(content string, now time.Time) {
	n.Content = content
	n.Modified = now
}

func (n *Note) OwnedBy(userID string) bool {
	return n.UserID != "" && n.UserID == userID
}

func (n *Note) CursorValue(field string) string {
	switch field {
	case "created":
		return pagination.FormatTime(n.Created)
	case "modified":
		return pagination.FormatTime(n.Modified)
	default:
		return n.ID
	}
}

func (n *Note) Clone() *Note {
	c := *n
	return &c
}
