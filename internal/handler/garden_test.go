package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/idlegarden/internal/database/memory"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/handler"
)

func newGardenHandler(t *testing.T) (*handler.GardenHandler, garden.Service) {
	t.Helper()
	handler.InitValidator()
	svc := garden.NewService(memory.NewStore(memory.DefaultCatalog()), nil, garden.Config{})
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return handler.NewGardenHandler(svc), svc
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}, idemKey string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	if idemKey != "" {
		req.Header.Set(handler.HeaderIdempotencyKey, idemKey)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

var carrotPlant = domain.PlantRequest{UserID: "u1", PlotID: 1, PlantTypeID: "carrot", ExpectedCost: 100, BaseGrowthSeconds: 30}

func TestGardenHandler_GetState(t *testing.T) {
	h, _ := newGardenHandler(t)

	t.Run("missing user", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetState(w, httptest.NewRequest(http.MethodGet, "/garden/state", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.CodeInvalidInput, decodeError(t, w).Code)
	})

	t.Run("starter garden", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.GetState(w, httptest.NewRequest(http.MethodGet, "/garden/state?user_id=u1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var snap domain.GardenSnapshot
		require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
		assert.Equal(t, domain.StarterCoins, snap.Economy.Coins)
		assert.Len(t, snap.Plots, domain.StarterPlots)
		assert.NotEmpty(t, snap.Catalog)
	})
}

func TestGardenHandler_Plant(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{"success", carrotPlant, http.StatusOK, ""},
		{"bad json", "not an object", http.StatusBadRequest, domain.CodeInvalidInput},
		{"plot out of range", domain.PlantRequest{UserID: "u1", PlotID: 0, PlantTypeID: "carrot", BaseGrowthSeconds: 30}, http.StatusBadRequest, domain.CodeInvalidInput},
		{"locked plot", domain.PlantRequest{UserID: "u1", PlotID: 2, PlantTypeID: "carrot", ExpectedCost: 100, BaseGrowthSeconds: 30}, http.StatusBadRequest, domain.CodePlotLocked},
		{"unknown plant", domain.PlantRequest{UserID: "u1", PlotID: 1, PlantTypeID: "kudzu", ExpectedCost: 100, BaseGrowthSeconds: 30}, http.StatusNotFound, domain.CodePlantTypeNotFound},
		{"level too low", domain.PlantRequest{UserID: "u1", PlotID: 1, PlantTypeID: "starfruit", ExpectedCost: 2000, BaseGrowthSeconds: 14400}, http.StatusBadRequest, domain.CodeLevelTooLow},
		{"cost mismatch", domain.PlantRequest{UserID: "u1", PlotID: 1, PlantTypeID: "carrot", ExpectedCost: 99, BaseGrowthSeconds: 30}, http.StatusConflict, domain.CodeCostMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newGardenHandler(t)

			w := postJSON(t, h.Plant, tt.body, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode == "" {
				var res domain.PlantResult
				require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
				assert.True(t, res.Success)
				assert.Equal(t, int64(0), res.NewCoinBalance)
				return
			}
			assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
		})
	}
}

func TestGardenHandler_PlantValidationFields(t *testing.T) {
	h, _ := newGardenHandler(t)

	w := postJSON(t, h.Plant, domain.PlantRequest{PlotID: 1, BaseGrowthSeconds: 30}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, domain.CodeInvalidInput, resp.Code)
	assert.Contains(t, resp.Fields, "user_id")
	assert.Contains(t, resp.Fields, "plant_type_id")
}

func TestGardenHandler_HarvestNotReady(t *testing.T) {
	h, _ := newGardenHandler(t)
	require.Equal(t, http.StatusOK, postJSON(t, h.Plant, carrotPlant, "").Code)

	w := postJSON(t, h.Harvest, domain.HarvestRequest{
		UserID:                "u1",
		PlotID:                1,
		ComputedHarvestReward: 187,
		ComputedExpReward:     20,
		ComputedGrowthSeconds: 30,
		MultiplierSnapshot:    domain.DefaultMultiplierSet(),
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, domain.CodeNotReady, resp.Code)
	assert.Equal(t, string(domain.KindValidation), resp.Kind)
}

func TestGardenHandler_IdempotentReplay(t *testing.T) {
	h, _ := newGardenHandler(t)

	first := postJSON(t, h.Plant, carrotPlant, "key-1")
	require.Equal(t, http.StatusOK, first.Code)

	replay := postJSON(t, h.Plant, carrotPlant, "key-1")
	assert.Equal(t, http.StatusConflict, replay.Code)
	assert.Equal(t, domain.CodeDuplicateRequest, decodeError(t, replay).Code)
}

func TestGardenHandler_GrantAndCooldown(t *testing.T) {
	h, _ := newGardenHandler(t)
	grant := domain.GrantRequest{UserID: "u1", RewardType: domain.RewardTypeCoins, RewardAmount: 50, AdDurationMs: 30000}

	w := postJSON(t, h.Grant, grant, "")
	require.Equal(t, http.StatusOK, w.Code)
	var res domain.GrantResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.DailyCount)
	require.NotNil(t, res.Economy)
	assert.Equal(t, int64(150), res.Economy.Coins)

	again := postJSON(t, h.Grant, grant, "")
	assert.Equal(t, http.StatusTooManyRequests, again.Code)
	assert.NotEmpty(t, again.Header().Get("Retry-After"))
	resp := decodeError(t, again)
	assert.Equal(t, domain.CodeOnCooldown, resp.Code)
	assert.Equal(t, domain.RewardTypeCoins, resp.RewardType)
	assert.InDelta(t, 1020, resp.TimeUntilNextSeconds, 2)

	cw := httptest.NewRecorder()
	h.GetCooldown(cw, httptest.NewRequest(http.MethodGet, "/garden/cooldown?user_id=u1&reward_type=coins", nil))
	require.Equal(t, http.StatusOK, cw.Code)
	var state domain.CooldownState
	require.NoError(t, json.NewDecoder(cw.Body).Decode(&state))
	assert.False(t, state.Available)
	assert.Equal(t, 1, state.DailyCount)
}

func TestGardenHandler_GrantUnknownRewardType(t *testing.T) {
	h, _ := newGardenHandler(t)

	w := postJSON(t, h.Grant, domain.GrantRequest{UserID: "u1", RewardType: "diamonds", RewardAmount: 5}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Unknown reward type", resp.Fields["reward_type"])
}

func TestGardenHandler_CooldownReportsAllMissingParams(t *testing.T) {
	h, _ := newGardenHandler(t)

	w := httptest.NewRecorder()
	h.GetCooldown(w, httptest.NewRequest(http.MethodGet, "/garden/cooldown", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Fields, 2)
	assert.Contains(t, resp.Fields, handler.QueryParamUserID)
	assert.Contains(t, resp.Fields, handler.QueryParamRewardType)
}

func TestGardenHandler_RejectsOversizedIdempotencyKey(t *testing.T) {
	h, svc := newGardenHandler(t)

	key := strings.Repeat("k", handler.MaxIdempotencyKeyLength+1)
	w := postJSON(t, h.Plant, carrotPlant, key)

	require.Equal(t, http.StatusBadRequest, w.Code)
	snap, err := svc.State(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StarterCoins, snap.Economy.Coins, "nothing settled")
}

func TestAdminHandlers(t *testing.T) {
	_, svc := newGardenHandler(t)

	t.Run("invalid effect", func(t *testing.T) {
		w := postJSON(t, handler.HandleAddUpgrade(svc), handler.AddUpgradeRequest{UserID: "u1", UpgradeID: "x", EffectType: "luck", EffectValue: 2}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upgrade applies", func(t *testing.T) {
		w := postJSON(t, handler.HandleAddUpgrade(svc), handler.AddUpgradeRequest{UserID: "u1", UpgradeID: "golden_hoe", EffectType: "harvest", EffectValue: 2}, "")
		require.Equal(t, http.StatusOK, w.Code)

		snap, err := svc.State(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, snap.Upgrades, 1)
		assert.Equal(t, "golden_hoe", snap.Upgrades[0].UpgradeID)
	})

	t.Run("tier set and cleared", func(t *testing.T) {
		w := postJSON(t, handler.HandleSetTier(svc), handler.SetTierRequest{UserID: "u1", Name: "early_access", Harvest: 1.1}, "")
		require.Equal(t, http.StatusOK, w.Code)
		snap, err := svc.State(context.Background(), "u1")
		require.NoError(t, err)
		require.NotNil(t, snap.Tier)

		w = postJSON(t, handler.HandleSetTier(svc), handler.SetTierRequest{UserID: "u1"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		snap, err = svc.State(context.Background(), "u1")
		require.NoError(t, err)
		assert.Nil(t, snap.Tier)
	})

	t.Run("purge", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.HandlePurge(svc, 0)(w, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var resp handler.PurgeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, handler.MsgPurgeCompleted, resp.Message)
	})
}
