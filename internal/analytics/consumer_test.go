package analytics_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinifier/tinifier/internal/analytics"
	"go.uber.org/zap"
)

type capturingSink struct {
	mu      sync.Mutex
	created []*analytics.EntryCreatedEvent
	viewed  []*analytics.EntryViewedEvent
}

func (s *capturingSink) EntryCreated(_ context.Context, event *analytics.EntryCreatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = append(s.created, event)

	return nil
}

func (s *capturingSink) EntryViewed(_ context.Context, event *analytics.EntryViewedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewed = append(s.viewed, event)

	return nil
}

func (s *capturingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.created), len(s.viewed)
}

func TestConsumer(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	sink := &capturingSink{}
	consumer := analytics.NewConsumer(pubsub, sink, zap.NewNop())

	require.NoError(t, consumer.Start(context.Background()))

	publishCreated := analytics.NewPublishFunc[analytics.EntryCreatedEvent](pubsub, analytics.TopicEntryCreated)
	publishViewed := analytics.NewPublishFunc[analytics.EntryViewedEvent](pubsub, analytics.TopicEntryViewed)

	require.NoError(t, publishCreated(&analytics.EntryCreatedEvent{
		Code:    "abc123",
		LongURL: "exampledotcom",
		Author:  "alice",
	}))
	require.NoError(t, publishViewed(&analytics.EntryViewedEvent{
		Code:     "abc123",
		ViewedAt: time.Now(),
	}))

	assert.Eventually(t, func() bool {
		created, viewed := sink.counts()

		return created == 1 && viewed == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, consumer.Shutdown())

	created, viewed := sink.counts()
	require.Equal(t, 1, created)
	require.Equal(t, 1, viewed)
	assert.Equal(t, "abc123", sink.created[0].Code)
	assert.Equal(t, "alice", sink.created[0].Author)
	assert.Equal(t, "abc123", sink.viewed[0].Code)
}

func TestLogRecorder(t *testing.T) {
	recorder := analytics.NewLogRecorder(zap.NewNop())

	assert.NoError(t, recorder.EntryCreated(context.Background(), &analytics.EntryCreatedEvent{Code: "abc123"}))
	assert.NoError(t, recorder.EntryViewed(context.Background(), &analytics.EntryViewedEvent{Code: "abc123"}))
}
