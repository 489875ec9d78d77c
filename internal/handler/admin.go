package handler

import (
	"net/http"
	"time"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/garden"
	"github.com/osse101/idlegarden/internal/logger"
)

// AddUpgradeRequest records a purchased permanent upgrade
type AddUpgradeRequest struct {
	UserID      string  `json:"user_id" validate:"required,max=100"`
	UpgradeID   string  `json:"upgrade_id" validate:"required,max=64"`
	EffectType  string  `json:"effect_type" validate:"required,effect_type"`
	EffectValue float64 `json:"effect_value" validate:"gt=0"`
}

// SetTierRequest sets a tier bonus; an empty name clears it
type SetTierRequest struct {
	UserID  string  `json:"user_id" validate:"required,max=100"`
	Name    string  `json:"name" validate:"max=64"`
	Harvest float64 `json:"harvest" validate:"gte=0"`
}

// PurgeResponse reports rows removed by a purge
type PurgeResponse struct {
	Message       string `json:"message"`
	BoostsRemoved int64  `json:"boosts_removed"`
	KeysRemoved   int64  `json:"keys_removed"`
}

// HandleAddUpgrade records an upgrade (admin only)
// @Summary Add upgrade
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AddUpgradeRequest true "Upgrade"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ValidationErrorResponse
// @Router /admin/garden/upgrade [post]
// @Security ApiKeyAuth
func HandleAddUpgrade(svc garden.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest[AddUpgradeRequest](w, r, ActionUpgrade)
		if !ok {
			return
		}

		upgrade := domain.UpgradeRecord{
			UpgradeID:   req.UpgradeID,
			EffectType:  domain.EffectType(req.EffectType),
			EffectValue: req.EffectValue,
		}
		if err := svc.AddUpgrade(r.Context(), req.UserID, upgrade); err != nil {
			respondServiceError(w, r, ActionUpgrade, err)
			return
		}

		logger.FromContext(r.Context()).Info(MsgUpgradeAdded, "user_id", req.UserID, "upgrade_id", req.UpgradeID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgUpgradeAdded})
	}
}

// HandleSetTier sets or clears a tier bonus (admin only)
// @Summary Set tier bonus
// @Tags admin
// @Accept json
// @Produce json
// @Param request body SetTierRequest true "Tier"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ValidationErrorResponse
// @Router /admin/garden/tier [post]
// @Security ApiKeyAuth
func HandleSetTier(svc garden.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest[SetTierRequest](w, r, ActionTier)
		if !ok {
			return
		}

		var tier *domain.TierBonus
		if req.Name != "" {
			tier = &domain.TierBonus{Name: req.Name, Harvest: req.Harvest}
		}
		if err := svc.SetTier(r.Context(), req.UserID, tier); err != nil {
			respondServiceError(w, r, ActionTier, err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgTierUpdated})
	}
}

// HandlePurge removes expired boosts and idempotency keys (admin only)
// @Summary Purge expired records
// @Tags admin
// @Produce json
// @Success 200 {object} PurgeResponse
// @Router /admin/garden/purge [post]
// @Security ApiKeyAuth
func HandlePurge(svc garden.Service, keyTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boosts, keys, err := svc.PurgeExpired(r.Context(), keyTTL)
		if err != nil {
			respondServiceError(w, r, ActionPurge, err)
			return
		}

		respondJSON(w, http.StatusOK, PurgeResponse{
			Message:       MsgPurgeCompleted,
			BoostsRemoved: boosts,
			KeysRemoved:   keys,
		})
	}
}
