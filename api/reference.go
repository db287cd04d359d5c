package api

import (
	"net/http"

	"github.com/garnizeh/pereval/pkg/repository"
)

type ReferenceHandler struct {
	repo repository.ReferenceRepo
}

func NewReferenceHandler(repo repository.ReferenceRepo) *ReferenceHandler {
	return &ReferenceHandler{repo: repo}
}

func (h *ReferenceHandler) Areas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.repo.ListAreas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, areas, http.StatusOK)
}

func (h *ReferenceHandler) Activities(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.ListActivityTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, types, http.StatusOK)
}
