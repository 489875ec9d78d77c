package handler

import (
	"net/http"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/logger"
	"github.com/osse101/idlegarden/internal/metrics"
)

// GardenHandler serves the authority endpoints used by game clients
type GardenHandler struct {
	svc garden.Service
}

// NewGardenHandler creates a new garden handler
func NewGardenHandler(svc garden.Service) *GardenHandler {
	return &GardenHandler{svc: svc}
}

// GetState returns the full garden snapshot
// @Summary Get garden state
// @Description Returns balances, plots, modifiers and the plant catalog. Creates a starter garden on first use.
// @Tags garden
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} domain.GardenSnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /garden/state [get]
// @Security ApiKeyAuth
func (h *GardenHandler) GetState(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, QueryParamUserID)
	if !ok {
		return
	}

	snapshot, err := h.svc.State(r.Context(), params[0])
	if err != nil {
		respondServiceError(w, r, ActionState, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// Harvest settles a harvest against client-computed amounts
// @Summary Harvest a plot
// @Description Verifies the client's computed reward and credits it. A mismatch returns 409 with code cost_mismatch.
// @Tags garden
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param request body domain.HarvestRequest true "Harvest request"
// @Success 200 {object} domain.HarvestResult
// @Failure 400 {object} ErrorResponse "Invalid plot, not ready or nothing to harvest"
// @Failure 409 {object} ErrorResponse "Cost mismatch or duplicate request"
// @Failure 500 {object} ErrorResponse
// @Router /garden/harvest [post]
// @Security ApiKeyAuth
func (h *GardenHandler) Harvest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[domain.HarvestRequest](w, r, ActionHarvest)
	if !ok {
		return
	}
	if req.IdempotencyKey, ok = idempotencyKey(w, r); !ok {
		return
	}

	log := logger.FromContext(r.Context())
	log.Debug(LogMsgRequestDetails, "user_id", req.UserID, "plot_id", req.PlotID, "coins", req.ComputedHarvestReward)

	result, err := h.svc.Harvest(r.Context(), req)
	if err != nil {
		metrics.RecordSettlementFailure(err)
		respondServiceError(w, r, ActionHarvest, err)
		return
	}

	log.Info(LogMsgHarvestSettled, "user_id", req.UserID, "plot_id", req.PlotID, "revision", result.Revision)
	respondJSON(w, http.StatusOK, result)
}

// Plant settles a plant and deducts its cost
// @Summary Plant a seed
// @Description Verifies the expected cost and plants at the plot.
// @Tags garden
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param request body domain.PlantRequest true "Plant request"
// @Success 200 {object} domain.PlantResult
// @Failure 400 {object} ErrorResponse "Invalid plot, occupied, level too low or insufficient funds"
// @Failure 409 {object} ErrorResponse "Cost mismatch or duplicate request"
// @Failure 500 {object} ErrorResponse
// @Router /garden/plant [post]
// @Security ApiKeyAuth
func (h *GardenHandler) Plant(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[domain.PlantRequest](w, r, ActionPlant)
	if !ok {
		return
	}
	if req.IdempotencyKey, ok = idempotencyKey(w, r); !ok {
		return
	}

	log := logger.FromContext(r.Context())
	log.Debug(LogMsgRequestDetails, "user_id", req.UserID, "plot_id", req.PlotID, "plant_type_id", req.PlantTypeID)

	result, err := h.svc.Plant(r.Context(), req)
	if err != nil {
		metrics.RecordSettlementFailure(err)
		respondServiceError(w, r, ActionPlant, err)
		return
	}

	log.Info(LogMsgPlantSettled, "user_id", req.UserID, "plot_id", req.PlotID, "revision", result.Revision)
	respondJSON(w, http.StatusOK, result)
}

// GetCooldown returns the reward gate for one reward type
// @Summary Get reward cooldown
// @Tags rewards
// @Produce json
// @Param user_id query string true "User ID"
// @Param reward_type query string true "Reward type"
// @Success 200 {object} domain.CooldownState
// @Failure 400 {object} ErrorResponse
// @Router /garden/cooldown [get]
// @Security ApiKeyAuth
func (h *GardenHandler) GetCooldown(w http.ResponseWriter, r *http.Request) {
	params, ok := requireQuery(w, r, QueryParamUserID, QueryParamRewardType)
	if !ok {
		return
	}

	state, err := h.svc.CooldownState(r.Context(), params[0], params[1])
	if err != nil {
		respondServiceError(w, r, ActionCooldown, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Grant grants an ad reward through the cooldown gate
// @Summary Grant ad reward
// @Description Atomically checks cooldown and daily quota, then credits the reward. Rejections return 429 with time_until_next_seconds.
// @Tags rewards
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Deduplication key"
// @Param request body domain.GrantRequest true "Grant request"
// @Success 200 {object} domain.GrantResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "On cooldown or daily limit reached"
// @Router /garden/grant [post]
// @Security ApiKeyAuth
func (h *GardenHandler) Grant(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[domain.GrantRequest](w, r, ActionGrant)
	if !ok {
		return
	}
	if req.IdempotencyKey, ok = idempotencyKey(w, r); !ok {
		return
	}

	result, err := h.svc.Grant(r.Context(), req)
	if err != nil {
		metrics.RecordSettlementFailure(err)
		respondServiceError(w, r, ActionGrant, err)
		return
	}

	logger.FromContext(r.Context()).Info(LogMsgGrantSettled,
		"user_id", req.UserID,
		"reward_type", req.RewardType,
		"daily_count", result.DailyCount)
	respondJSON(w, http.StatusOK, result)
}
