package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/cmeetit/cmeetit/internal/ctxkeys"
	"github.com/cmeetit/cmeetit/internal/service"
	"github.com/cmeetit/cmeetit/internal/service/payment"
)

type SettlementHandler struct {
	settlementService *service.SettlementService
	goalService       *service.GoalService
}

func NewSettlementHandler(settlementService *service.SettlementService, goalService *service.GoalService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		goalService:       goalService,
	}
}

func (h *SettlementHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	settlement, err := h.settlementService.Start(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusCreated, settlement)
}

func (h *SettlementHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	settlement, err := h.settlementService.Latest(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, settlement)
}

type confirmRequest struct {
	PaymentID string `json:"payment_id"`
}

func (h *SettlementHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req confirmRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PaymentID == "" {
		writeError(w, http.StatusBadRequest, "payment_id is required")
		return
	}

	goal, err := h.settlementService.Confirm(r.Context(), userID, goalID, req.PaymentID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID, "payment_id", req.PaymentID)
		return
	}

	writeJSON(w, http.StatusOK, h.goalService.Summary(goal))
}

func (h *SettlementHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Error("failed to read webhook payload", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	defer func() {
		closeErr := r.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close request body", "error", closeErr)
		}
	}()

	err = h.settlementService.HandleWebhook(r.Context(), payload, r.Header)
	if errors.Is(err, payment.ErrInvalidWebhook) {
		slog.Warn("rejected webhook", "error", err)
		writeError(w, http.StatusBadRequest, "invalid webhook")
		return
	}
	if err != nil {
		slog.Error("failed to handle webhook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
