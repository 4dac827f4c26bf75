package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/queue"
	"github.com/unclebandit/lifecycle-messaging/internal/service"
)

func TestRecordWritesDirectlyWithoutQueue(t *testing.T) {
	store := newFakeStore()
	svc := &service.ActivityService{Repo: fakeEvents{store}, Logger: zap.NewNop()}

	svc.Record(context.Background(), 3, model.EventQuoteSent, map[string]int{"quote_id": 12})

	require.Len(t, store.events, 1)
	assert.Equal(t, model.EventQuoteSent, store.events[0].EventType)
	assert.JSONEq(t, `{"quote_id":12}`, string(store.events[0].Payload))
}

func TestRecordDropsInvalidEvents(t *testing.T) {
	store := newFakeStore()
	svc := &service.ActivityService{Repo: fakeEvents{store}, Logger: zap.NewNop()}

	svc.Record(context.Background(), 3, model.EventType("cake_eaten"), nil)
	svc.Record(context.Background(), 0, model.EventLogin, nil)
	svc.Record(context.Background(), 3, model.EventLogin, func() {})

	require.Len(t, store.events, 1)
	assert.Empty(t, store.events[0].Payload)
}

func TestRecordThroughQueue(t *testing.T) {
	store := newFakeStore()
	q := queue.NewInMemoryQueue(zap.NewNop())
	require.NoError(t, queue.StartActivityEventSubscriber(q, fakeEvents{store}, zap.NewNop()))
	svc := &service.ActivityService{Repo: fakeEvents{store}, Queue: q, Logger: zap.NewNop()}

	svc.Record(context.Background(), 5, model.EventLinkShared, nil)

	assert.Eventually(t, func() bool {
		n, _ := fakeEvents{store}.CountSince(context.Background(), 5, time.Time{}, model.EventLinkShared)
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMetricsBundle(t *testing.T) {
	store := newFakeStore()
	store.addEvents(1, model.EventLogin, testNow.Add(-2*24*time.Hour), 2)
	store.addEvents(1, model.EventLogin, testNow.Add(-10*24*time.Hour), 1)
	store.addEvents(1, model.EventLeadCreated, testNow.Add(-60*24*time.Hour), 4)
	store.addEvents(1, model.EventQuoteCreated, testNow.Add(-9*24*time.Hour), 2)
	store.addEvents(1, model.EventQuoteSent, testNow.Add(-9*24*time.Hour), 1)
	store.addEvents(1, model.EventCalculatorConfigured, testNow.Add(-90*24*time.Hour), 1)
	store.addEvents(1, model.EventLinkCopied, testNow.Add(-3*24*time.Hour), 1)
	store.addEvents(2, model.EventOrderCreated, testNow.Add(-time.Hour), 3)

	svc := &service.ActivityService{Repo: fakeEvents{store}, Logger: zap.NewNop()}
	m, err := svc.Metrics(context.Background(), 1, testNow)
	require.NoError(t, err)

	assert.Equal(t, testNow, m.AsOf)
	assert.Equal(t, 2, m.LoginCount7d)
	assert.Equal(t, 3, m.LoginCount14d)
	assert.Equal(t, 4, m.LeadCount)
	assert.Equal(t, 2, m.QuoteCount)
	assert.Equal(t, 1, m.SentQuoteCount)
	assert.Equal(t, 0, m.OrderCount)
	assert.True(t, m.HasConfiguredCalculator)
	assert.True(t, m.HasSharedLink)
	// link_copied is not a key action; the quotes fall in the 14 day window only.
	assert.Equal(t, 0, m.KeyActionCount7d)
	assert.Equal(t, 3, m.KeyActionCount14d)
}

func TestLastOfType(t *testing.T) {
	store := newFakeStore()
	store.addEvents(1, model.EventLogin, testNow.Add(-48*time.Hour), 1)
	store.addEvents(1, model.EventLogin, testNow.Add(-time.Hour), 1)
	svc := &service.ActivityService{Repo: fakeEvents{store}, Logger: zap.NewNop()}

	last, err := svc.LastOfType(context.Background(), 1, model.EventLogin)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, testNow.Add(-time.Hour), last.CreatedAt)

	none, err := svc.LastOfType(context.Background(), 1, model.EventOrderCreated)
	require.NoError(t, err)
	assert.Nil(t, none)

	has, err := svc.HasEventSince(context.Background(), 1, model.EventLogin, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.True(t, has)
}
