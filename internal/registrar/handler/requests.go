package handler

import (
	dErrors "namelease/pkg/domain-errors"
)

// ClaimRequest is the HTTP request body for POST /domains/{name}/claim.
// Amount is the value attached to the call; the service keeps any
// over-payment, so the DTO only rejects what can never be valid.
type ClaimRequest struct {
	Years  int   `json:"years"`
	Amount int64 `json:"amount"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must not be negative")
	}
	return nil
}

// RenewRequest is the HTTP request body for POST /domains/{name}/renew.
type RenewRequest struct {
	AdditionalYears int   `json:"additional_years"`
	Amount          int64 `json:"amount"`
}

// Validate validates the request.
func (r *RenewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must not be negative")
	}
	return nil
}

// PriceRequest is the HTTP request body for POST /admin/price.
type PriceRequest struct {
	PricePerYear int64 `json:"price_per_year"`
}

// Validate validates the request. The range check lives in the service;
// the DTO only rejects a missing body.
func (r *PriceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// MultiplierRequest is the HTTP request body for POST /admin/multiplier.
type MultiplierRequest struct {
	RenewalMultiplier int64 `json:"renewal_multiplier"`
}

// Validate validates the request.
func (r *MultiplierRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// DepositRequest is the HTTP request body for POST /deposit.
type DepositRequest struct {
	Amount int64 `json:"amount"`
}

// Validate validates the request.
func (r *DepositRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Amount < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must not be negative")
	}
	return nil
}
