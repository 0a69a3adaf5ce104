package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fotomagic/internal/domain"
	"fotomagic/internal/notify"
	"fotomagic/internal/payment"
)

type paymentRequest struct {
	UserID  int64  `json:"user_id"`
	RateID  int64  `json:"rate_id"`
	Channel string `json:"channel"`
}

// PaymentsCreate opens a payment for a bundle and starts a background watch
// that settles it once the provider confirms. Any previous unpaid watch for
// the same user is superseded.
func (a *App) PaymentsCreate(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	channel := domain.PaymentChannel(req.Channel)
	if channel != domain.PaymentChannelCard && channel != domain.PaymentChannelCrypto {
		a.error(w, http.StatusBadRequest, "bad_request", "channel must be card or crypto")
		return
	}

	rate, err := a.Rates.GetRate(r.Context(), req.RateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown rate")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load rate")
		return
	}
	if _, err := a.Store.GetUser(r.Context(), req.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "unknown user")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load user")
		return
	}

	var link payment.Link
	if channel == domain.PaymentChannelCrypto {
		link, err = a.Payments.CreateCryptoPayment(r.Context(), rate.Cost)
	} else {
		description := notify.PurchaseDescription(rate.Amount, rate.Kind, req.UserID)
		link, err = a.Payments.CreateCardPayment(r.Context(), rate.Cost, description)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("channel", string(channel)).Msg("handlers: payment creation failed")
		a.error(w, http.StatusBadGateway, "upstream", "payment provider rejected the request")
		return
	}

	// The watch outlives this request by design.
	a.Watcher.Start(context.WithoutCancel(r.Context()), domain.PaymentWatch{
		PaymentID: link.ID,
		UserID:    req.UserID,
		Amount:    rate.Amount,
		Cost:      rate.Cost,
		Kind:      rate.Kind,
		Channel:   channel,
		Interval:  a.PaymentInterval,
		Deadline:  a.PaymentDeadline,
	})

	a.json(w, http.StatusCreated, map[string]any{"id": link.ID, "url": link.URL})
}

// PaymentsCancel cooperatively stops the user's in-flight watch.
func (a *App) PaymentsCancel(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}
	if !a.Watcher.CancelForUser(userID) {
		a.error(w, http.StatusNotFound, "not_found", "no payment watch for user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RatesList serves the purchasable bundles of one kind.
func (a *App) RatesList(w http.ResponseWriter, r *http.Request) {
	kind := domain.RateKind(r.URL.Query().Get("kind"))
	if kind != domain.RateRestore && kind != domain.RateAnimate {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be restore or animate")
		return
	}
	rates, err := a.Rates.ListRates(r.Context(), kind)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load rates")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"rates": rates})
}
