package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/event"
)

func TestEventMetricsCollector(t *testing.T) {
	bus := event.NewMemoryBus()
	NewEventMetricsCollector().Register(bus)
	ctx := context.Background()

	harvests := testutil.ToFloat64(HarvestsSettled.WithLabelValues("carrot"))
	earned := testutil.ToFloat64(CoinsEarned)
	gems := testutil.ToFloat64(GemsAwarded)
	spent := testutil.ToFloat64(CoinsSpent)
	granted := testutil.ToFloat64(RewardsGranted.WithLabelValues(domain.RewardTypeGems))

	require.NoError(t, bus.Publish(ctx, event.NewHarvestCompletedEvent("u1", 1, "carrot", 190, 20, 1)))
	require.NoError(t, bus.Publish(ctx, event.NewPlotPlantedEvent("u1", 1, "carrot", testTime, 100)))
	require.NoError(t, bus.Publish(ctx, event.NewRewardGrantedEvent("u1", domain.RewardTypeGems, 3, 1, 5)))

	assert.Equal(t, harvests+1, testutil.ToFloat64(HarvestsSettled.WithLabelValues("carrot")))
	assert.Equal(t, earned+190, testutil.ToFloat64(CoinsEarned))
	assert.Equal(t, gems+4, testutil.ToFloat64(GemsAwarded))
	assert.Equal(t, spent+100, testutil.ToFloat64(CoinsSpent))
	assert.Equal(t, granted+1, testutil.ToFloat64(RewardsGranted.WithLabelValues(domain.RewardTypeGems)))
}

func TestEventMetricsCollector_BadPayloadCounted(t *testing.T) {
	before := testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.PlotPlanted)))

	err := NewEventMetricsCollector().HandleEvent(context.Background(), event.Event{Type: event.PlotPlanted, Payload: "garbage"})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.PlotPlanted))))
}

func TestRecordSettlementFailure(t *testing.T) {
	before := testutil.ToFloat64(SettlementFailures.WithLabelValues(string(domain.KindCostMismatch)))
	RecordSettlementFailure(domain.ErrCostMismatch)
	assert.Equal(t, before+1, testutil.ToFloat64(SettlementFailures.WithLabelValues(string(domain.KindCostMismatch))))

	before = testutil.ToFloat64(SettlementFailures.WithLabelValues(string(domain.KindFatal)))
	RecordSettlementFailure(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(SettlementFailures.WithLabelValues(string(domain.KindFatal))))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/garden/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/garden/{userID}", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/garden/alice", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/garden/{userID}", "418")))
}

var testTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
