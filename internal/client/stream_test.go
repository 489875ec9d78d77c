package client_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/client"
	"github.com/osse101/idlegarden/internal/domain"
)

func TestStream_DeliversEconomyUpdates(t *testing.T) {
	a := newAuthorityServer(t)
	ctx := context.Background()
	cfg := client.Config{BaseURL: a.url, APIKey: testAPIKey, UserID: testUser}

	var revision atomic.Int64
	stream := client.NewStream(cfg, []string{domain.EventTypeEconomyUpdated})
	stream.OnEconomyUpdated(func(_ context.Context, p domain.EconomyUpdatedPayloadV1) error {
		revision.Store(p.Revision)
		return nil
	})
	stream.Start(ctx)
	defer stream.Stop()

	require.Eventually(t, stream.IsConnected, 2*time.Second, 10*time.Millisecond)
	// The hub registers clients on its own goroutine
	time.Sleep(50 * time.Millisecond)

	res, err := a.client().Plant(ctx, carrot)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return revision.Load() == res.Revision }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_IgnoresControlFramesAndBadPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "id: c1\nevent: connected\ndata: {}\n\n")
		fmt.Fprint(w, "event: keepalive\ndata: {}\n\n")
		fmt.Fprint(w, "id: e1\nevent: economy.updated\ndata: not-json\n\n")
		fmt.Fprint(w, "id: e2\nevent: economy.updated\ndata: {\"payload\":{\"revision\":9}}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	var calls, revision atomic.Int64
	stream := client.NewStream(client.Config{BaseURL: srv.URL}, nil)
	stream.OnEconomyUpdated(func(_ context.Context, p domain.EconomyUpdatedPayloadV1) error {
		calls.Add(1)
		revision.Store(p.Revision)
		return nil
	})
	stream.Start(context.Background())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	stream.Stop()
	assert.Equal(t, int64(9), revision.Load())
	assert.False(t, stream.IsConnected())
}
