package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/models"
	"github.com/7893/PaddlePal/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// GetByTicketHandler handles GET /matches/{ticket}
func (h *MatchHandler) GetByTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := getIDFromURL(r, "ticket")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.matchService.GetByTicket(r.Context(), ticket)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByEventHandler handles GET /events/{eventKey}/matches
func (h *MatchHandler) ListByEventHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListByEvent(r.Context(), getEventKey(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayingHandler handles GET /matches/playing
func (h *MatchHandler) PlayingHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListPlaying(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// QueueHandler handles GET /matches/queue
func (h *MatchHandler) QueueHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchService.ListQueue(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type submitScoreInput struct {
	Games []services.GameInput `json:"games"`
}

// SubmitScoreHandler handles POST /admin/matches/{matchID}/score
func (h *MatchHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input submitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matchService.SubmitScore(r.Context(), matchID, input.Games)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": m}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type walkoverInput struct {
	Side string `json:"side"`
}

// WalkoverHandler handles POST /admin/matches/{matchID}/walkover
func (h *MatchHandler) WalkoverHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input walkoverInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matchService.Walkover(r.Context(), matchID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": m}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type statusInput struct {
	Status models.MatchStatus `json:"status"`
}

// SetStatusHandler handles PUT /admin/matches/{matchID}/status
func (h *MatchHandler) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input statusInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.matchService.SetStatus(r.Context(), matchID, input.Status); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleInput struct {
	TableNo *int    `json:"table_no"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
}

// ScheduleHandler handles PUT /admin/matches/{matchID}/schedule
func (h *MatchHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input scheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.matchService.Schedule(r.Context(), matchID, input.TableNo, input.Date, input.Time); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnsureRubbersHandler handles POST /admin/matches/{matchID}/rubbers
func (h *MatchHandler) EnsureRubbersHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rubbers, err := h.matchService.EnsureRubbers(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"rubbers": rubbers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type rubberLineupInput struct {
	Player1ID *int `json:"player1_id"`
	Player2ID *int `json:"player2_id"`
	Player3ID *int `json:"player3_id"`
	Player4ID *int `json:"player4_id"`
}

// SetRubberPlayersHandler handles PUT /admin/matches/{matchID}/rubbers/{rubberID}
func (h *MatchHandler) SetRubberPlayersHandler(w http.ResponseWriter, r *http.Request) {
	rubberID, err := getIDFromURL(r, "rubberID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input rubberLineupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	err = h.matchService.SetRubberPlayers(r.Context(), rubberID,
		input.Player1ID, input.Player2ID, input.Player3ID, input.Player4ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FinishTeamMatchHandler handles POST /admin/matches/{matchID}/finish
func (h *MatchHandler) FinishTeamMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	m, err := h.matchService.FinishTeamMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": m}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
