package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/services"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(ds services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: ds}
}

// StatusHandler handles GET /events/{eventKey}/draw
func (h *DrawHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.drawService.Status(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /admin/events/{eventKey}/draw/start
func (h *DrawHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	status, err := h.drawService.Start(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextHandler handles POST /admin/events/{eventKey}/draw/next
func (h *DrawHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	draw, err := h.drawService.Next(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutoHandler handles POST /admin/events/{eventKey}/draw/auto
func (h *DrawHandler) AutoHandler(w http.ResponseWriter, r *http.Request) {
	drawn, err := h.drawService.Auto(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"drawn": drawn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler handles POST /admin/events/{eventKey}/draw/reset
func (h *DrawHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.drawService.Reset(r.Context(), getEventKey(r)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateMatchesHandler handles POST /admin/events/{eventKey}/matches/generate
func (h *DrawHandler) GenerateMatchesHandler(w http.ResponseWriter, r *http.Request) {
	created, err := h.drawService.GenerateMatches(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"created": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
