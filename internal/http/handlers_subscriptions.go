package http

import (
	"math"
	"net/http"
	"strings"
	"time"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/services"
)

type subscriptionView struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Amount          float64                `json:"amount"`
	Category        *analytics.CategoryRef `json:"category,omitempty"`
	Frequency       core.Period            `json:"frequency"`
	BillingDay      int                    `json:"billingDay"`
	NextBillingDate time.Time              `json:"nextBillingDate"`
	Icon            string                 `json:"icon"`
	Color           string                 `json:"color"`
	IsActive        bool                   `json:"isActive"`
	Notes           string                 `json:"notes,omitempty"`
}

func subscriptionToView(sub core.Subscription, categories map[string]core.Category) subscriptionView {
	v := subscriptionView{
		ID:              sub.ID,
		Name:            sub.Name,
		Amount:          sub.Amount.Units(),
		Frequency:       sub.Frequency,
		BillingDay:      sub.BillingDay,
		NextBillingDate: sub.NextBillingDate,
		Icon:            sub.Icon,
		Color:           sub.Color,
		IsActive:        sub.IsActive,
		Notes:           sub.Notes,
	}
	if sub.CategoryID != "" {
		cat := categories[sub.CategoryID]
		v.Category = &analytics.CategoryRef{ID: sub.CategoryID, Name: cat.Name, Icon: cat.Icon, Color: cat.Color}
	}
	return v
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	var active *bool
	if v := r.URL.Query().Get("active"); v != "" {
		b := v == "true"
		active = &b
	}

	subs, err := s.svc.Subscriptions.List(r.Context(), userID, active)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriptionToView(sub, categories))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubscriptionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Subscriptions.Summarize(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	sub, err := s.svc.Subscriptions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, subscriptionToView(sub, categories))
}

type subscriptionRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Frequency  string  `json:"frequency"`
	BillingDay int     `json:"billingDay"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Notes      string  `json:"notes"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Amount <= 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}

	userID := userIDFrom(r.Context())
	created, err := s.svc.Subscriptions.Create(r.Context(), userID, services.SubscriptionInput{
		Name:       req.Name,
		Amount:     core.Money{Cents: int64(math.Round(req.Amount * 100))},
		CategoryID: req.Category,
		Frequency:  core.Period(req.Frequency),
		BillingDay: req.BillingDay,
		Icon:       req.Icon,
		Color:      req.Color,
		Notes:      req.Notes,
	})
	if err != nil {
		if msg := validationMessage(err); msg != err.Error() {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		writeServiceError(w, r, err, "Subscription not found")
		return
	}

	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message      string           `json:"message"`
		Subscription subscriptionView `json:"subscription"`
	}{
		Message:      "Subscription created successfully",
		Subscription: subscriptionToView(created, categories),
	})
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	existing, err := s.svc.Subscriptions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}

	req := subscriptionRequest{
		Name:       existing.Name,
		Amount:     existing.Amount.Units(),
		Category:   existing.CategoryID,
		Frequency:  string(existing.Frequency),
		BillingDay: existing.BillingDay,
		Icon:       existing.Icon,
		Color:      existing.Color,
		Notes:      existing.Notes,
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be greater than 0")
		return
	}

	sub := existing
	sub.Name = strings.TrimSpace(req.Name)
	sub.Amount = core.Money{Cents: int64(math.Round(req.Amount * 100))}
	sub.CategoryID = req.Category
	sub.Frequency = core.Period(req.Frequency)
	sub.BillingDay = req.BillingDay
	sub.Icon = req.Icon
	sub.Color = req.Color
	sub.Notes = req.Notes

	updated, err := s.svc.Subscriptions.Update(r.Context(), sub)
	if err != nil {
		if msg := validationMessage(err); msg != err.Error() {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		writeServiceError(w, r, err, "Subscription not found")
		return
	}

	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message      string           `json:"message"`
		Subscription subscriptionView `json:"subscription"`
	}{
		Message:      "Subscription updated successfully",
		Subscription: subscriptionToView(updated, categories),
	})
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	sub, err := s.svc.Subscriptions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}

	sub.IsActive = !sub.IsActive
	updated, err := s.svc.Subscriptions.Update(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}

	msg := "Subscription paused successfully"
	if updated.IsActive {
		msg = "Subscription activated successfully"
	}
	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message      string           `json:"message"`
		Subscription subscriptionView `json:"subscription"`
	}{
		Message:      msg,
		Subscription: subscriptionToView(updated, categories),
	})
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Subscriptions.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Subscription not found")
		return
	}
	writeMessage(w, http.StatusOK, "Subscription deleted successfully")
}
