package handler

import (
	"net/http"
	"time"

	dErrors "namelease/pkg/domain-errors"
	"namelease/pkg/platform/httputil"
	"namelease/pkg/requestcontext"
)

// handleClaim handles POST /domains/{name}/claim requests.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	name := leaseName(r)
	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	lease, err := h.service.Claim(ctx, name, req.Years, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "claim failed",
			"request_id", requestID,
			"caller", caller,
			"name", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain claimed",
		"request_id", requestID,
		"caller", caller,
		"name", name,
		"years", req.Years,
		"duration_ms", elapsedMS(start),
	)

	httputil.WriteJSON(w, http.StatusOK, FromLease(lease, requestcontext.Now(ctx)))
}

// handleRenew handles POST /domains/{name}/renew requests.
func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	name := leaseName(r)
	req, ok := httputil.DecodeAndPrepare[RenewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	lease, err := h.service.Renew(ctx, name, req.AdditionalYears, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "renewal failed",
			"request_id", requestID,
			"caller", caller,
			"name", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain renewed",
		"request_id", requestID,
		"caller", caller,
		"name", name,
		"additional_years", req.AdditionalYears,
		"duration_ms", elapsedMS(start),
	)

	httputil.WriteJSON(w, http.StatusOK, FromLease(lease, requestcontext.Now(ctx)))
}

// handleInfo handles GET /domains/{name} requests. No authentication; the
// registry is public record.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	name := leaseName(r)
	lease, err := h.service.Info(ctx, name)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "lease lookup failed",
				"request_id", requestID,
				"name", name,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromLease(lease, requestcontext.Now(ctx)))
}

// handleOwner handles GET /domains/{name}/owner requests.
func (h *Handler) handleOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	name := leaseName(r)
	owner, err := h.service.Owner(ctx, name)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "owner lookup failed",
				"request_id", requestID,
				"name", name,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &OwnerResponse{Name: name, Owner: owner})
}

// handleDeposit handles POST /deposit requests. Deposits land in the
// ledger and do nothing else; callers pay claims and renewals with value
// attached to those calls, not from deposited balance.
func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.CallerID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[DepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.depositor.Deposit(ctx, caller, req.Amount); err != nil {
		h.logger.ErrorContext(ctx, "deposit failed",
			"request_id", requestID,
			"caller", caller,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "deposit accepted",
		"request_id", requestID,
		"caller", caller,
		"amount", req.Amount,
	)

	w.WriteHeader(http.StatusNoContent)
}
