package analytics

import "time"

// Topics for the in-process event pipeline.
const (
	TopicEntryCreated = "entry.created"
	TopicEntryViewed  = "entry.viewed"
)

// EntryCreatedEvent is emitted when a URL is shortened and stored.
type EntryCreatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	Author    string    `json:"author"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntryViewedEvent is emitted when a short code is resolved.
type EntryViewedEvent struct {
	Code     string    `json:"code"`
	ViewedAt time.Time `json:"viewedAt"`
}
