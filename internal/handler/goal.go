package handler

import (
	"errors"
	"io"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/ctxkeys"
	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/cmeetit/cmeetit/internal/service"
	"github.com/cmeetit/cmeetit/internal/validation"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type goalsResponse struct {
	Today civil.Date          `json:"today"`
	Goals []lifecycle.Summary `json:"goals"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	summaries, err := h.goalService.Summaries(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, goalsResponse{Today: h.goalService.Today(), Goals: summaries})
}

func (h *GoalHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	eligibility, err := h.goalService.Eligibility(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, eligibility)
}

type createGoalRequest struct {
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Motivation             string     `json:"motivation"`
	AccountabilityPartners []string   `json:"accountability_partners"`
	CommitmentType         string     `json:"commitment_type"`
	CommitmentAmount       flexString `json:"commitment_amount"`
	StartDate              string     `json:"start_date"`
	EndDate                string     `json:"end_date"`
	TargetDays             flexString `json:"target_days"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.Create(r.Context(), userID, validation.NewGoalInput{
		Title:                  req.Title,
		Description:            req.Description,
		Motivation:             req.Motivation,
		AccountabilityPartners: req.AccountabilityPartners,
		CommitmentType:         req.CommitmentType,
		CommitmentAmount:       string(req.CommitmentAmount),
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		TargetDays:             string(req.TargetDays),
	})
	if err != nil {
		writeServiceError(w, err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusCreated, h.goalService.Summary(goal))
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.Goal(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, h.goalService.Summary(goal))
}

type checkInRequest struct {
	// Date defaults to today when empty.
	Date string `json:"date"`
}

func (h *GoalHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req checkInRequest
	err := decodeJSON(w, r, &req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var date *civil.Date
	if req.Date != "" {
		d, err := calendar.Parse(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		date = &d
	}

	goal, err := h.goalService.CheckIn(r.Context(), userID, goalID, date)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, h.goalService.Summary(goal))
}

func (h *GoalHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.MarkFailed(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, h.goalService.Summary(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), userID, goalID)
	if err != nil {
		writeServiceError(w, err, "user_id", userID, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
