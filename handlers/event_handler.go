package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/repositories"
	"github.com/7893/PaddlePal/services"
)

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(es services.EventService) *EventHandler {
	return &EventHandler{eventService: es}
}

// ListHandler handles GET /events
func (h *EventHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListWithProgress(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByKeyHandler handles GET /events/{eventKey}
func (h *EventHandler) GetByKeyHandler(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.GetByKey(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler handles POST /admin/events
func (h *EventHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	event, err := h.eventService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /admin/events/{eventID}
func (h *EventHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	event, err := h.eventService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /admin/events/{eventID}
func (h *EventHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.eventService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GroupsHandler handles GET /events/{eventKey}/groups
func (h *EventHandler) GroupsHandler(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.GetByKey(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	groups, err := h.eventService.Groups(r.Context(), event.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	type groupWithEntries struct {
		*models.GroupTable
		Entries []*repositories.GroupEntryDetail `json:"entries"`
	}
	payload := make([]groupWithEntries, 0, len(groups))
	for _, g := range groups {
		entries, err := h.eventService.GroupEntries(r.Context(), g.ID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		payload = append(payload, groupWithEntries{GroupTable: g, Entries: entries})
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": payload}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type entryInput struct {
	GroupIndex int  `json:"group_index"`
	PlayerID   int  `json:"player_id"`
	Position   int  `json:"position"`
	TeamID     *int `json:"team_id"`
}

// AssignEntryHandler handles POST /admin/events/{eventID}/entries
func (h *EventHandler) AssignEntryHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input entryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	err = h.eventService.AssignEntry(r.Context(), eventID, input.GroupIndex, input.PlayerID, input.Position, input.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveEntryHandler handles DELETE /admin/events/{eventID}/entries
func (h *EventHandler) RemoveEntryHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input entryInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.eventService.RemoveEntry(r.Context(), eventID, input.GroupIndex, input.PlayerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearEntriesHandler handles DELETE /admin/events/{eventID}/entries/all
func (h *EventHandler) ClearEntriesHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.eventService.ClearEntries(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rankInput struct {
	GroupIndex int `json:"group_index"`
	PlayerID   int `json:"player_id"`
	Rank       int `json:"rank"`
}

// AutoAssignEntriesHandler handles POST /admin/events/{eventID}/entries/auto
func (h *EventHandler) AutoAssignEntriesHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	assigned, err := h.eventService.AutoAssignEntries(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"assigned": assigned}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetEntryRankHandler handles PUT /admin/events/{eventID}/entries/rank
func (h *EventHandler) SetEntryRankHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input rankInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.eventService.SetEntryRank(r.Context(), eventID, input.GroupIndex, input.PlayerID, input.Rank); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
