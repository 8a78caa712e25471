package shortener

import (
	"fmt"
	"regexp"
	"time"
)

// Entry is the canonical stored record associating a short code with a
// long URL and its metadata. Entries are passed by value: callers never
// hold a reference into a store's internal state.
type Entry struct {
	LongURL   string
	ShortURL  string
	ExpiresAt *time.Time // nil means the entry never expires
	CreatedAt time.Time
	Author    string
}

// UpdateRequest is a partial-update descriptor. Nil fields mean "leave
// unchanged". ShortURL is carried for completeness but neither Merge nor
// Associate ever reads it — updates cannot change an entry's identity.
type UpdateRequest struct {
	LongURL   *string
	ShortURL  *string
	ExpiresAt *time.Time
	Author    string
}

// NewEntry constructs an entry stamped with the current time. The author
// identity is an explicit parameter; resolving it (from the environment or
// anywhere else) is the caller's concern.
func NewEntry(longURL, shortURL, author string) Entry {
	return Entry{
		LongURL:   longURL,
		ShortURL:  shortURL,
		CreatedAt: time.Now(),
		Author:    author,
	}
}

// Merge returns a copy with LongURL and ExpiresAt replaced where the request
// supplies them. ShortURL, CreatedAt and Author are never touched: merging
// cannot change identity, timestamps, or authorship.
func (e Entry) Merge(req UpdateRequest) Entry {
	if req.LongURL != nil {
		e.LongURL = *req.LongURL
	}

	if req.ExpiresAt != nil {
		e.ExpiresAt = req.ExpiresAt
	}

	return e
}

// Associate returns an updated copy like Merge, except Author is replaced
// unconditionally by the request's author. This is a distinct contract from
// Merge, not a variant to be unified with it.
func (e Entry) Associate(req UpdateRequest) Entry {
	merged := e.Merge(req)
	merged.Author = req.Author

	return merged
}

// longURLPattern is intentionally stricter than real URLs: letters and
// digits only. Widening it changes what round-trips through the line codec,
// so it stays in lockstep with lineGrammar below.
var longURLPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Valid reports whether the entry's long URL matches the restricted
// character class. Construction does not enforce this; validity is a
// separate check.
func (e Entry) Valid() bool {
	return longURLPattern.MatchString(e.LongURL)
}

// ParseError reports a persisted line that does not match the record grammar.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed entry line: %q", e.Line)
}

// lineGrammar matches one persisted record:
//
//	<short>:<long>,<expiration>,<creation>,<author>
//
// short and author are alphanumeric, long is a single word-character run.
var lineGrammar = regexp.MustCompile(
	`^(?P<short>[a-zA-Z0-9]+):(?P<long>\w+),(?P<expiration>.*),(?P<creation>.*),(?P<author>\w+)$`,
)

// MarshalLine renders the entry in the persisted line format.
func (e Entry) MarshalLine() string {
	expiration := "never"
	if e.ExpiresAt != nil {
		expiration = e.ExpiresAt.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s:%s,%s,%s,%s",
		e.ShortURL, e.LongURL, expiration, e.CreatedAt.Format(time.RFC3339), e.Author)
}

// ParseLine parses one persisted line into an Entry. Timestamps are NOT
// restored: ExpiresAt is reset to nil and CreatedAt to the parse time. The
// persisted timestamp text is matched but discarded.
func ParseLine(line string) (Entry, error) {
	m := lineGrammar.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, &ParseError{Line: line}
	}

	return Entry{
		ShortURL:  m[lineGrammar.SubexpIndex("short")],
		LongURL:   m[lineGrammar.SubexpIndex("long")],
		CreatedAt: time.Now(),
		Author:    m[lineGrammar.SubexpIndex("author")],
	}, nil
}
