package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/jobs"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func (s *recordingSink) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func TestAsyncSinkDelivers(t *testing.T) {
	rec := &recordingSink{done: make(chan struct{}, 1)}
	sink := NewAsyncSink(rec, jobs.QueueConfig{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink.Start(ctx)
	defer sink.Stop()

	require.NoError(t, sink.Publish(ctx, NewEvent(EventExamCreated, map[string]string{"id": "exam-1"})))

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 1)
	assert.Equal(t, EventExamCreated, rec.events[0].Name)
}

func TestAsyncSinkRejectsBeforeStart(t *testing.T) {
	sink := NewAsyncSink(NopSink{}, jobs.QueueConfig{})
	assert.Error(t, sink.Publish(context.Background(), NewEvent(EventExamCreated, nil)))
}

func TestHubBroadcastsToWebsocketClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil, nil)
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), NewEvent(EventFinanceUpdate, map[string]int{"pendingAmount": 30000})))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var event struct {
		Name    string         `json:"event"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg, &event))
	assert.Equal(t, EventFinanceUpdate, event.Name)
	assert.Equal(t, 30000, event.Payload["pendingAmount"])
}
