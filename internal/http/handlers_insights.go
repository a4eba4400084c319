package http

import (
	"net/http"
	"strconv"
	"time"

	"smartspend/internal/analytics"
)

func (s *Server) handleMonthlyPrediction(w http.ResponseWriter, r *http.Request) {
	prediction, err := s.svc.Insights.PredictMonthly(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Prediction not found")
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleCategoryPredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.svc.Insights.PredictByCategory(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Prediction not found")
		return
	}
	if predictions == nil {
		predictions = []analytics.CategoryPrediction{}
	}
	writeJSON(w, http.StatusOK, predictions)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := analytics.DefaultTrendMonths
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24 {
			writeMessage(w, http.StatusBadRequest, "Months must be between 1 and 24")
			return
		}
		months = n
	}

	report, err := s.svc.Insights.Trends(r.Context(), userIDFrom(r.Context()), months, time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Trends not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Insights.Tips(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Tips not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSavingsGoal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targetAmount, err := strconv.ParseFloat(q.Get("targetAmount"), 64)
	if err != nil || targetAmount <= 0 {
		writeMessage(w, http.StatusBadRequest, "Target amount must be greater than 0")
		return
	}
	targetMonths, err := strconv.Atoi(q.Get("targetMonths"))
	if err != nil || targetMonths < 1 {
		writeMessage(w, http.StatusBadRequest, "Target months must be at least 1")
		return
	}

	plan, err := s.svc.Insights.SavingsGoal(r.Context(), userIDFrom(r.Context()), targetAmount, targetMonths, time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Savings goal not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHealthReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Insights.Health(r.Context(), userIDFrom(r.Context()), time.Now())
	if err != nil {
		writeServiceError(w, r, err, "Health report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
