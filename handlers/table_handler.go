package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/brackets"
	"github.com/7893/PaddlePal/services"
)

type TableHandler struct {
	tableService services.TableService
}

func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

// CrossTableHandler handles GET /events/{eventKey}/crosstable
func (h *TableHandler) CrossTableHandler(w http.ResponseWriter, r *http.Request) {
	mode := brackets.ModeResult
	if r.URL.Query().Get("mode") == "time" {
		mode = brackets.ModeTime
	}
	tables, err := h.tableService.CrossTables(r.Context(), getEventKey(r), mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tables": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /events/{eventKey}/standings
func (h *TableHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	standings, err := h.tableService.Standings(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketHandler handles GET /events/{eventKey}/bracket
func (h *TableHandler) BracketHandler(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.tableService.Bracket(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
