package client_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/authority"
	"github.com/osse101/idlegarden/internal/client"
	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/database/memory"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/engine"
	"github.com/osse101/idlegarden/internal/event"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/server"
	"github.com/osse101/idlegarden/internal/sse"
)

const (
	testAPIKey = "test-key"
	testUser   = "u1"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// busPublisher delivers straight to the bus
type busPublisher struct {
	bus event.Bus
}

func (p busPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	_ = p.bus.Publish(ctx, evt)
}

type authorityServer struct {
	url   string
	svc   garden.Service
	clock *testClock
}

func newAuthorityServer(t *testing.T) *authorityServer {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	bus := event.NewMemoryBus()
	hub := sse.NewHub()
	hub.Start()
	sse.NewSubscriber(hub, bus).Subscribe()

	svc := garden.NewService(memory.NewStore(memory.DefaultCatalog()), busPublisher{bus: bus}, garden.Config{}, garden.WithClock(clock.Now))
	srv := httptest.NewServer(server.NewRouter(server.Config{APIKey: testAPIKey}, nil, svc, hub))
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
		_ = svc.Shutdown(context.Background())
	})
	return &authorityServer{url: srv.URL, svc: svc, clock: clock}
}

func (a *authorityServer) client() *client.Client {
	return client.New(client.Config{BaseURL: a.url, APIKey: testAPIKey, UserID: testUser})
}

var carrot = domain.PlantRequest{UserID: testUser, PlotID: 1, PlantTypeID: "carrot", ExpectedCost: 100, BaseGrowthSeconds: 30}

func TestClient_StateAndPlant(t *testing.T) {
	a := newAuthorityServer(t)
	c := a.client()
	ctx := context.Background()

	snap, err := c.State(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, domain.StarterCoins, snap.Economy.Coins)
	assert.Len(t, snap.Plots, domain.StarterPlots)

	res, err := c.Plant(ctx, carrot)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(0), res.NewCoinBalance)
	require.NotNil(t, res.Economy)
	assert.Equal(t, snap.Economy.Revision+1, res.Economy.Revision)
}

func TestClient_ErrorsMapToSentinels(t *testing.T) {
	a := newAuthorityServer(t)
	c := a.client()
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.PlantRequest
		want error
		kind domain.ErrorKind
	}{
		{"cost mismatch", domain.PlantRequest{UserID: testUser, PlotID: 1, PlantTypeID: "carrot", ExpectedCost: 1, BaseGrowthSeconds: 30}, domain.ErrCostMismatch, domain.KindCostMismatch},
		{"locked", domain.PlantRequest{UserID: testUser, PlotID: 2, PlantTypeID: "carrot", ExpectedCost: 100, BaseGrowthSeconds: 30}, domain.ErrPlotLocked, domain.KindValidation},
		{"unknown plant", domain.PlantRequest{UserID: testUser, PlotID: 1, PlantTypeID: "kudzu", ExpectedCost: 100, BaseGrowthSeconds: 30}, domain.ErrPlantTypeNotFound, domain.KindValidation},
		{"request validation", domain.PlantRequest{UserID: testUser, PlotID: 0, PlantTypeID: "carrot", BaseGrowthSeconds: 30}, domain.ErrInvalidInput, domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Plant(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestClient_IdempotencyKeyIsSent(t *testing.T) {
	a := newAuthorityServer(t)
	c := a.client()
	ctx := context.Background()

	req := carrot
	req.IdempotencyKey = "delta-1"
	_, err := c.Plant(ctx, req)
	require.NoError(t, err)

	_, err = c.Plant(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestClient_CooldownErrorsCarryCountdown(t *testing.T) {
	a := newAuthorityServer(t)
	c := a.client()
	ctx := context.Background()
	grant := domain.GrantRequest{UserID: testUser, RewardType: domain.RewardTypeCoins, RewardAmount: 50, AdDurationMs: 30000}

	res, err := c.Grant(ctx, grant)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DailyCount)

	_, err = c.Grant(ctx, grant)
	require.ErrorIs(t, err, domain.ErrOnCooldown)
	var onCooldown cooldown.ErrOnCooldown
	require.True(t, errors.As(err, &onCooldown))
	assert.Equal(t, 17*time.Minute, onCooldown.Remaining)

	state, err := c.CooldownState(ctx, testUser, domain.RewardTypeCoins)
	require.NoError(t, err)
	assert.False(t, state.Available)
	assert.Equal(t, int64(17*60), state.TimeUntilNextSeconds)
}

func TestClient_TransportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("bad api key is definitive", func(t *testing.T) {
		a := newAuthorityServer(t)
		c := client.New(client.Config{BaseURL: a.url, APIKey: "wrong"})
		_, err := c.State(ctx, testUser)
		require.ErrorIs(t, err, domain.ErrAuthorityRejected)
		assert.True(t, domain.IsDefinitiveFailure(err))
	})

	t.Run("unreachable is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := client.New(client.Config{BaseURL: url, APIKey: testAPIKey, Timeout: time.Second})
		_, err := c.State(ctx, testUser)
		assert.ErrorIs(t, err, domain.ErrAuthorityUnavailable)
		assert.False(t, domain.IsDefinitiveFailure(err))
	})

	t.Run("gateway error without body is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := client.New(client.Config{BaseURL: srv.URL}).State(ctx, testUser)
		assert.ErrorIs(t, err, domain.ErrAuthorityUnavailable)
	})
}

func TestClient_RequestIDPropagates(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")

	t.Run("sent as header", func(t *testing.T) {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get(client.HeaderRequestID)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := client.New(client.Config{BaseURL: srv.URL}).State(ctx, testUser)
		require.Error(t, err)
		assert.Equal(t, "req-1", got)
	})

	t.Run("tagged on failure log", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := client.New(client.Config{BaseURL: url, Timeout: time.Second}).State(ctx, testUser)
		require.ErrorIs(t, err, domain.ErrAuthorityUnavailable)
		assert.Contains(t, buf.String(), client.LogMsgRequestFailed)
		assert.Contains(t, buf.String(), "req-1")
	})
}

func TestEngineOverHTTP(t *testing.T) {
	a := newAuthorityServer(t)
	ctx := context.Background()

	var auth authority.Authority = a.client()
	oracle := authority.AdOracleFunc(func(context.Context, string) (bool, int64, error) { return true, 30000, nil })
	eng := engine.New(engine.Config{UserID: testUser}, auth, oracle, engine.WithClock(a.clock.Now))
	require.NoError(t, eng.Load(ctx))

	_, err := eng.Plant(ctx, 1, "carrot")
	require.NoError(t, err)

	a.clock.Advance(30 * time.Second)
	res, err := eng.Harvest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(190), res.FinalCoins)
	assert.Equal(t, int64(190), eng.Display().Coins)
	assert.Empty(t, eng.Pending())

	_, err = eng.ClaimAdReward(ctx, domain.RewardTypeCoins, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(240), eng.Display().Coins)

	_, err = eng.ClaimAdReward(ctx, domain.RewardTypeCoins, 50)
	assert.ErrorIs(t, err, domain.ErrOnCooldown)
}
