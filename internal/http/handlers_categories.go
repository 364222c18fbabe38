package http

import (
	"net/http"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.categories.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(list))
	for i := range list {
		out[i] = toCategoryResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	c, err := s.categories.Create(r.Context(), &core.Category{
		Name:  req.Name,
		Type:  core.CategoryType(req.Type),
		Color: req.Color,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	upd := storage.CategoryUpdate{
		Name:  req.Name,
		Color: req.Color,
	}
	if req.Type != nil {
		typ := core.CategoryType(*req.Type)
		upd.Type = &typ
	}

	c, err := s.categories.Update(r.Context(), id, upd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.categories.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
