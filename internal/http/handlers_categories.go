package http

import (
	"net/http"
	"time"

	"smartspend/internal/core"
)

type categoryView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Icon      string            `json:"icon"`
	Color     string            `json:"color"`
	Type      core.CategoryType `json:"type"`
	IsDefault bool              `json:"isDefault"`
	CreatedAt time.Time         `json:"createdAt"`
}

func categoryToView(c core.Category) categoryView {
	return categoryView{
		ID:        c.ID,
		Name:      c.Name,
		Icon:      c.Icon,
		Color:     c.Color,
		Type:      c.Type,
		IsDefault: c.IsDefault,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typeFilter := core.CategoryType(r.URL.Query().Get("type"))
	cats, err := s.svc.Categories.List(r.Context(), userIDFrom(r.Context()), typeFilter)
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}
	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, categoryToView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.svc.Categories.Get(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, categoryToView(cat))
}

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = string(core.CategoryExpense)
	}
	cat := core.Category{
		UserID: userIDFrom(r.Context()),
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Type:   core.CategoryType(req.Type),
	}
	if err := cat.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	created, err := s.svc.Categories.Create(r.Context(), cat)
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message  string       `json:"message"`
		Category categoryView `json:"category"`
	}{
		Message:  "Category created successfully",
		Category: categoryToView(created),
	})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	existing, err := s.svc.Categories.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}

	req := categoryRequest{
		Name:  existing.Name,
		Icon:  existing.Icon,
		Color: existing.Color,
		Type:  string(existing.Type),
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	cat := existing
	cat.Name = req.Name
	cat.Icon = req.Icon
	cat.Color = req.Color
	cat.Type = core.CategoryType(req.Type)
	if err := cat.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	updated, err := s.svc.Categories.Update(r.Context(), cat)
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message  string       `json:"message"`
		Category categoryView `json:"category"`
	}{
		Message:  "Category updated successfully",
		Category: categoryToView(updated),
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Categories.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, "Category not found")
		return
	}
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
