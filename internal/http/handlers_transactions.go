package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartspend/internal/analytics"
	"smartspend/internal/core"
	"smartspend/internal/storage"
)

type transactionView struct {
	ID          string                `json:"id"`
	Type        core.TransactionType  `json:"type"`
	Amount      float64               `json:"amount"`
	Category    analytics.CategoryRef `json:"category"`
	Description string                `json:"description"`
	Date        time.Time             `json:"date"`
	Tags        []string              `json:"tags"`
	Notes       string                `json:"notes,omitempty"`
	IsRecurring bool                  `json:"isRecurring"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

func transactionToView(t core.Transaction, categories map[string]core.Category) transactionView {
	cat := categories[t.CategoryID]
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return transactionView{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount.Units(),
		Category:    analytics.CategoryRef{ID: t.CategoryID, Name: cat.Name, Icon: cat.Icon, Color: cat.Color},
		Description: t.Description,
		Date:        t.Date,
		Tags:        tags,
		Notes:       t.Notes,
		IsRecurring: t.IsRecurring,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (s *Server) categoriesByID(r *http.Request, userID string) (map[string]core.Category, error) {
	cats, err := s.svc.Categories.List(r.Context(), userID, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Category, len(cats))
	for _, c := range cats {
		out[c.ID] = c
	}
	return out, nil
}

type paginationView struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	q := r.URL.Query()

	filter := storage.TransactionFilter{
		Type:       core.TransactionType(q.Get("type")),
		CategoryID: q.Get("category"),
		Limit:      50,
		Page:       1,
	}
	if v := q.Get("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		filter.Start = t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid date format")
			return
		}
		// Inclusive end of day.
		filter.End = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	if v := q.Get("minAmount"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinCents = int64(math.Round(f * 100))
		}
	}
	if v := q.Get("maxAmount"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxCents = int64(math.Round(f * 100))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}

	txs, total, err := s.svc.Transactions.List(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, transactionToView(t, categories))
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions []transactionView `json:"transactions"`
		Pagination   paginationView    `json:"pagination"`
	}{
		Transactions: views,
		Pagination: paginationView{
			Total: total,
			Page:  filter.Page,
			Pages: (total + filter.Limit - 1) / filter.Limit,
			Limit: filter.Limit,
		},
	})
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	period := core.Monthly
	switch r.URL.Query().Get("period") {
	case "week":
		period = core.Weekly
	case "year":
		period = core.Yearly
	}

	summary, err := s.svc.Transactions.Summarize(r.Context(), userIDFrom(r.Context()), period, time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	tx, err := s.svc.Transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, transactionToView(tx, categories))
}

type transactionRequest struct {
	Type        string   `json:"type"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes"`
	IsRecurring bool     `json:"isRecurring"`
}

// validate reports the first request problem using the API's messages.
func (req transactionRequest) validate() string {
	if req.Type != string(core.Income) && req.Type != string(core.Expense) {
		return "Type must be income or expense"
	}
	if req.Amount <= 0 {
		return "Amount must be greater than 0"
	}
	if strings.TrimSpace(req.Category) == "" {
		return "Category is required"
	}
	if strings.TrimSpace(req.Description) == "" {
		return "Description is required"
	}
	return ""
}

func (req transactionRequest) toTransaction(userID string) (core.Transaction, string) {
	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", req.Date)
			if err != nil {
				return core.Transaction{}, "Invalid date format"
			}
		}
		date = parsed
	}
	return core.Transaction{
		UserID:      userID,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: int64(math.Round(req.Amount * 100))},
		CategoryID:  req.Category,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Tags:        req.Tags,
		Notes:       req.Notes,
		IsRecurring: req.IsRecurring,
	}, ""
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	tx, msg := req.toTransaction(userID)
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.svc.Transactions.Create(r.Context(), tx)
	if err != nil {
		if errors.Is(err, core.ErrEmptyCategory) {
			writeMessage(w, http.StatusBadRequest, "Category not found")
			return
		}
		writeServiceError(w, r, err, "Transaction not found")
		return
	}

	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message     string          `json:"message"`
		Transaction transactionView `json:"transaction"`
	}{
		Message:     "Transaction created successfully",
		Transaction: transactionToView(created, categories),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	existing, err := s.svc.Transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}

	// Partial update on top of the stored record.
	req := transactionRequest{
		Type:        string(existing.Type),
		Amount:      existing.Amount.Units(),
		Category:    existing.CategoryID,
		Description: existing.Description,
		Date:        existing.Date.Format(time.RFC3339),
		Tags:        existing.Tags,
		Notes:       existing.Notes,
		IsRecurring: existing.IsRecurring,
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	tx, msg := req.toTransaction(userID)
	if msg != "" {
		writeMessage(w, http.StatusBadRequest, msg)
		return
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt

	updated, err := s.svc.Transactions.Update(r.Context(), tx)
	if err != nil {
		if errors.Is(err, core.ErrEmptyCategory) {
			writeMessage(w, http.StatusBadRequest, "Category not found")
			return
		}
		writeServiceError(w, r, err, "Transaction not found")
		return
	}

	categories, err := s.categoriesByID(r, userID)
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message     string          `json:"message"`
		Transaction transactionView `json:"transaction"`
	}{
		Message:     "Transaction updated successfully",
		Transaction: transactionToView(updated, categories),
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Transactions.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Transaction not found")
		return
	}
	writeMessage(w, http.StatusOK, "Transaction deleted successfully")
}
