package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrNotFound is returned when no catalog entry exists for an ISBN.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is the canonical title/author record for a normalized ISBN. Every
// physical copy of that ISBN references the same entry.
type Entry struct {
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetadataMismatchError is returned when a copy is registered against an
// existing ISBN with a different title or author. The existing entry is
// never overwritten.
type MetadataMismatchError struct {
	ISBN string
}

func (e *MetadataMismatchError) Error() string {
	return fmt.Sprintf("title/author do not match existing catalog entry for ISBN %s", e.ISBN)
}

// NormalizeISBN strips whitespace and hyphens and upper-cases the remainder,
// so "978-0-13-468599-1" and "9780134685991" key the same entry.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	b.Grow(len(isbn))
	for _, r := range isbn {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
