package http

import (
	"math"
	"net/http"
	"strings"
	"time"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
)

type budgetView struct {
	ID             string                `json:"id"`
	Category       analytics.CategoryRef `json:"category"`
	Amount         float64               `json:"amount"`
	Period         core.Period           `json:"period"`
	AlertThreshold int                   `json:"alertThreshold"`
	IsActive       bool                  `json:"isActive"`
	StartDate      time.Time             `json:"startDate"`
}

func (s *Server) budgetToView(r *http.Request, b core.Budget) (budgetView, error) {
	categories, err := s.categoriesByID(r, b.UserID)
	if err != nil {
		return budgetView{}, err
	}
	cat := categories[b.CategoryID]
	return budgetView{
		ID:             b.ID,
		Category:       analytics.CategoryRef{ID: b.CategoryID, Name: cat.Name, Icon: cat.Icon, Color: cat.Color},
		Amount:         b.Amount.Units(),
		Period:         b.Period,
		AlertThreshold: b.AlertThreshold,
		IsActive:       b.IsActive,
		StartDate:      b.StartDate,
	}, nil
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	standings, err := s.svc.Budgets.List(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}
	if standings == nil {
		standings = []analytics.BudgetStanding{}
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.Budgets.CheckAlerts(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

type budgetRequest struct {
	Category       string  `json:"category"`
	Amount         float64 `json:"amount"`
	Period         string  `json:"period"`
	AlertThreshold *int    `json:"alertThreshold"`
	IsActive       *bool   `json:"isActive"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeMessage(w, http.StatusBadRequest, "Category is required")
		return
	}
	if req.Amount <= 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}

	b := core.Budget{
		UserID:     userIDFrom(r.Context()),
		CategoryID: req.Category,
		Amount:     core.Money{Cents: int64(math.Round(req.Amount * 100))},
		Period:     core.Period(req.Period),
	}
	if req.AlertThreshold != nil {
		b.AlertThreshold = *req.AlertThreshold
	}

	created, err := s.svc.Budgets.Create(r.Context(), b)
	if err != nil {
		if msg := validationMessage(err); msg != err.Error() {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		writeServiceError(w, r, err, "Category not found")
		return
	}

	view, err := s.budgetToView(r, created)
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string     `json:"message"`
		Budget  budgetView `json:"budget"`
	}{
		Message: "Budget created successfully",
		Budget:  view,
	})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := s.svc.Budgets.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}

	b := existing
	if req.Amount > 0 {
		b.Amount = core.Money{Cents: int64(math.Round(req.Amount * 100))}
	}
	if req.Period != "" {
		b.Period = core.Period(req.Period)
	}
	if req.AlertThreshold != nil {
		b.AlertThreshold = *req.AlertThreshold
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	updated, err := s.svc.Budgets.Update(r.Context(), b)
	if err != nil {
		if msg := validationMessage(err); msg != err.Error() {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		writeServiceError(w, r, err, "Budget not found")
		return
	}

	view, err := s.budgetToView(r, updated)
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string     `json:"message"`
		Budget  budgetView `json:"budget"`
	}{
		Message: "Budget updated successfully",
		Budget:  view,
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Budgets.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Budget not found")
		return
	}
	writeMessage(w, http.StatusOK, "Budget deleted successfully")
}
