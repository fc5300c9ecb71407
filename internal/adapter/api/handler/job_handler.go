package handler

import (
	"github.com/labstack/echo/v4"

	"scentswap/internal/usecase"
	"scentswap/pkg/errors"
	"scentswap/pkg/response"
)

// JobHandler exposes the reconciliation jobs to the external scheduler. Every
// job is idempotent and safe to re-run on overlap or retry; the handler just
// relays the per-run result counts.
type JobHandler struct {
	reconcileUseCase *usecase.ReconcileUseCase
}

func NewJobHandler(reconcileUseCase *usecase.ReconcileUseCase) *JobHandler {
	return &JobHandler{
		reconcileUseCase: reconcileUseCase,
	}
}

type propagateTierRequest struct {
	UID string `json:"uid" validate:"required"`
}

type setTierRequest struct {
	IsPremium    bool `json:"is_premium"`
	IsIdVerified bool `json:"is_id_verified"`
}

func (h *JobHandler) ValidateUnreadCounts(c echo.Context) error {
	result, err := h.reconcileUseCase.ValidateUnreadCounts(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *JobHandler) ResetMonthlySwapCounts(c echo.Context) error {
	result, err := h.reconcileUseCase.ResetMonthlySwapCounts(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *JobHandler) CleanupExpiredSwaps(c echo.Context) error {
	result, err := h.reconcileUseCase.CleanupExpiredSwaps(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *JobHandler) PropagateOwnerTier(c echo.Context) error {
	var req propagateTierRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.reconcileUseCase.PropagateOwnerTier(c.Request().Context(), req.UID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

// SetUserTier flips a user's premium/verification flags and runs propagation
// inline, for upstream systems (payment, identity verification) that report
// tier changes into this service.
func (h *JobHandler) SetUserTier(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	var req setTierRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.reconcileUseCase.SetUserTier(c.Request().Context(), uid, req.IsPremium, req.IsIdVerified)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}
