package pagination

import (
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
)

// TimeLayout formats timestamps used as ordering values. UTC with fixed
// precision keeps the string order equal to the time order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Cursorable items expose the string form of the field they are ordered by.
type Cursorable interface {
	CursorValue(field string) string
}

// EncodeCursor wraps an ordering value into an opaque cursor.
func EncodeCursor(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

// DecodeCursor returns the ordering value carried by cursor.
func DecodeCursor(cursor string) (string, error) {
	value, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return "", errors.Wrap(err, "DecodeCursor")
	}
	return string(value), nil
}

// FormatTime renders t as an ordering value.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
