package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"fotomagic/internal/domain"
	"fotomagic/internal/generation"
	"fotomagic/internal/notify"
)

type generationRequest struct {
	UserID     int64  `json:"user_id"`
	Capability string `json:"capability"`
	Image      string `json:"image"` // base64
	Action     string `json:"action"`
	Freeform   bool   `json:"freeform"`
}

// GenerationsCreate runs one restoration or animation to completion and
// returns its terminal outcome. The request blocks until the provider
// finishes; clients are expected to hold the connection open.
func (a *App) GenerationsCreate(w http.ResponseWriter, r *http.Request) {
	var req generationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	capability := domain.Capability(req.Capability)
	if capability != domain.CapabilityRestore && capability != domain.CapabilityAnimate {
		a.error(w, http.StatusBadRequest, "bad_request", "capability must be restore or animate")
		return
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil || len(image) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "image must be non-empty base64")
		return
	}

	user, err := a.Store.GetUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown user")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load user")
		return
	}
	balance := user.Restores
	if capability == domain.CapabilityAnimate {
		balance = user.Animates
	}
	if balance <= 0 {
		a.error(w, http.StatusPaymentRequired, "no_balance", "no units left for this capability")
		return
	}

	genReq := domain.GenerationRequest{Image: image, Capability: capability}
	if capability == domain.CapabilityAnimate {
		if req.Freeform {
			genReq.Prompt = generation.FreeformPrompt(req.Action)
			genReq.MotionID = generation.DefaultMotionID
		} else {
			genReq.Prompt, genReq.MotionID = generation.ActionPrompt(req.Action)
		}
	}

	outcome := a.Generator.Generate(r.Context(), genReq)
	if !outcome.Succeeded() {
		a.json(w, http.StatusBadGateway, map[string]any{
			"error": map[string]string{
				"code":    outcome.ErrorCode,
				"message": outcome.ErrorMessage,
			},
			"text": notify.GenerationFailureMessage(capability, outcome.ErrorCode, outcome.ErrorMessage),
		})
		return
	}

	a.settleUsage(r, user.ID, capability)
	a.json(w, http.StatusOK, map[string]any{"media_url": outcome.MediaURL})
}

// settleUsage burns one unit and bumps the lifetime counter. Failures are
// logged, not surfaced; the user already has their media.
func (a *App) settleUsage(r *http.Request, userID int64, capability domain.Capability) {
	balanceField, doneField := domain.FieldRestores, domain.FieldRestoresDone
	if capability == domain.CapabilityAnimate {
		balanceField, doneField = domain.FieldAnimates, domain.FieldAnimatesDone
	}
	if err := a.Store.IncrementUserValue(r.Context(), userID, balanceField, -1); err != nil {
		a.Logger.Error().Err(err).Int64("user_id", userID).Msg("handlers: burning unit failed")
	}
	if err := a.Store.IncrementUserValue(r.Context(), userID, doneField, 1); err != nil {
		a.Logger.Error().Err(err).Int64("user_id", userID).Msg("handlers: usage counter failed")
	}
}

// MotionsList serves the animation preset catalog.
func (a *App) MotionsList(w http.ResponseWriter, r *http.Request) {
	motions, err := a.Motions.Motions(r.Context())
	if err != nil {
		a.error(w, http.StatusBadGateway, "upstream", "failed to load motions")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"motions": motions})
}
