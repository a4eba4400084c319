package http

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"smartspend/internal/auth"
	"smartspend/internal/core"
	"smartspend/internal/services"
)

type notificationSettingsView struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	BudgetAlerts bool `json:"budgetAlerts"`
	WeeklyReport bool `json:"weeklyReport"`
}

type settingsView struct {
	Theme         string                   `json:"theme"`
	Notifications notificationSettingsView `json:"notifications"`
}

type userView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Avatar        string        `json:"avatar"`
	Currency      string        `json:"currency"`
	MonthlyIncome float64       `json:"monthlyIncome"`
	Settings      *settingsView `json:"settings,omitempty"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
}

func settingsToView(s core.Settings) settingsView {
	return settingsView{
		Theme: s.Theme,
		Notifications: notificationSettingsView{
			Email:        s.Notifications.Email,
			Push:         s.Notifications.Push,
			BudgetAlerts: s.Notifications.BudgetAlerts,
			WeeklyReport: s.Notifications.WeeklyReport,
		},
	}
}

func userToView(u core.User, withSettings, withCreatedAt bool) userView {
	v := userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Avatar:        u.Avatar,
		Currency:      u.Currency,
		MonthlyIncome: u.MonthlyIncome.Units(),
	}
	if withSettings {
		sv := settingsToView(u.Settings)
		v.Settings = &sv
	}
	if withCreatedAt {
		t := u.CreatedAt
		v.CreatedAt = &t
	}
	return v
}

type sessionResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(strings.TrimSpace(req.Name)) < 2 {
		writeMessage(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeMessage(w, http.StatusBadRequest, "Please enter a valid email")
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	user, token, err := s.svc.Accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEmail) {
			writeMessage(w, http.StatusBadRequest, "Please enter a valid email")
			return
		}
		writeServiceError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    userToView(user, false, false),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		Token:   token,
		User:    userToView(user, true, false),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Accounts.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, userToView(user, true, true))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string  `json:"name"`
		Avatar        *string  `json:"avatar"`
		Currency      *string  `json:"currency"`
		MonthlyIncome *float64 `json:"monthlyIncome"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := profileUpdateFromRequest(req.Name, req.Avatar, req.Currency, req.MonthlyIncome)
	user, err := s.svc.Accounts.UpdateProfile(r.Context(), userIDFrom(r.Context()), upd)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string   `json:"message"`
		User    userView `json:"user"`
	}{
		Message: "Profile updated successfully",
		User:    userToView(user, true, false),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	current, err := s.svc.Accounts.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	// Partial update: absent fields keep their stored values.
	var req struct {
		Theme         *string `json:"theme"`
		Notifications *struct {
			Email        *bool `json:"email"`
			Push         *bool `json:"push"`
			BudgetAlerts *bool `json:"budgetAlerts"`
			WeeklyReport *bool `json:"weeklyReport"`
		} `json:"notifications"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := current.Settings
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.Notifications != nil {
		if req.Notifications.Email != nil {
			settings.Notifications.Email = *req.Notifications.Email
		}
		if req.Notifications.Push != nil {
			settings.Notifications.Push = *req.Notifications.Push
		}
		if req.Notifications.BudgetAlerts != nil {
			settings.Notifications.BudgetAlerts = *req.Notifications.BudgetAlerts
		}
		if req.Notifications.WeeklyReport != nil {
			settings.Notifications.WeeklyReport = *req.Notifications.WeeklyReport
		}
	}

	user, err := s.svc.Accounts.UpdateSettings(r.Context(), userID, settings)
	if err != nil {
		writeServiceError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message  string       `json:"message"`
		Settings settingsView `json:"settings"`
		Currency string       `json:"currency"`
	}{
		Message:  "Settings updated successfully",
		Settings: settingsToView(user.Settings),
		Currency: user.Currency,
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		writeMessage(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}

	err := s.svc.Accounts.ChangePassword(r.Context(), userIDFrom(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		writeServiceError(w, r, err, "User not found")
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func profileUpdateFromRequest(name, avatar, currency *string, monthlyIncome *float64) services.ProfileUpdate {
	upd := services.ProfileUpdate{
		Name:     name,
		Avatar:   avatar,
		Currency: currency,
	}
	if monthlyIncome != nil {
		cents := int64(math.Round(*monthlyIncome * 100))
		upd.MonthlyIncomeCents = &cents
	}
	return upd
}
