package handler

import (
	"net/http"
	"time"

	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/platform/httputil"
	"namelease/pkg/requestcontext"
)

// Admin endpoints authenticate like any other route; whether the caller is
// actually the registry admin is decided inside the service, against the
// persisted settings record.

// handleSetPrice handles POST /admin/price requests.
func (h *Handler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PriceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cfg, err := h.service.SetPricePerYear(ctx, req.PricePerYear)
	if err != nil {
		h.logger.ErrorContext(ctx, "price update failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSettings(cfg))
}

// handleSetMultiplier handles POST /admin/multiplier requests.
func (h *Handler) handleSetMultiplier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[MultiplierRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cfg, err := h.service.SetRenewalMultiplier(ctx, req.RenewalMultiplier)
	if err != nil {
		h.logger.ErrorContext(ctx, "multiplier update failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSettings(cfg))
}

// handlePause handles POST /admin/pause requests.
func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.togglePause(w, r, true)
}

// handleUnpause handles POST /admin/unpause requests.
func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	h.togglePause(w, r, false)
}

func (h *Handler) togglePause(w http.ResponseWriter, r *http.Request, paused bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	toggle := h.service.Pause
	if !paused {
		toggle = h.service.Unpause
	}

	cfg, err := toggle(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pause toggle failed",
			"request_id", requestID,
			"caller", caller,
			"paused", paused,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSettings(cfg))
}

// handleWithdraw handles POST /admin/withdraw requests.
func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	amount, err := h.service.Withdraw(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "withdrawal failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "funds withdrawn",
		"request_id", requestID,
		"caller", caller,
		"amount", amount,
		"duration_ms", elapsedMS(start),
	)

	httputil.WriteJSON(w, http.StatusOK, &WithdrawResponse{Amount: amount})
}

// handleSnapshot handles POST /admin/snapshot requests.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	if h.snapshotter == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "snapshot export is not configured"))
		return
	}

	key, err := h.snapshotter.Export(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "snapshot export failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "snapshot exported",
		"request_id", requestID,
		"caller", caller,
		"key", key,
		"duration_ms", elapsedMS(start),
	)

	httputil.WriteJSON(w, http.StatusOK, &SnapshotResponse{Key: key})
}
