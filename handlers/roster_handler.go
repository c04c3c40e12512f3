package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/services"
)

// maxFlagSize caps flag uploads at 5MB.
const maxFlagSize = 5 << 20

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rs services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rs}
}

// ListPlayersHandler handles GET /players
func (h *RosterHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("q"); name != "" {
		players, err := h.rosterService.SearchPlayers(r.Context(), name)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}
	players, err := h.rosterService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPlayerHandler handles GET /players/{playerID}
func (h *RosterHandler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	p, err := h.rosterService.GetPlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreatePlayerHandler handles POST /admin/players
func (h *RosterHandler) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	p, err := h.rosterService.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdatePlayerHandler handles PUT /admin/players/{playerID}
func (h *RosterHandler) UpdatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	p, err := h.rosterService.UpdatePlayer(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": p}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePlayerHandler handles DELETE /admin/players/{playerID}
func (h *RosterHandler) DeletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.rosterService.DeletePlayer(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTeamsHandler handles GET /teams
func (h *RosterHandler) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	teams, err := h.rosterService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TeamMembersHandler handles GET /teams/{teamID}
func (h *RosterHandler) TeamMembersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, players, err := h.rosterService.TeamMembers(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team, "players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateTeamHandler handles POST /admin/teams
func (h *RosterHandler) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	var input services.TeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.rosterService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTeamHandler handles PUT /admin/teams/{teamID}
func (h *RosterHandler) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.TeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.rosterService.UpdateTeam(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTeamHandler handles DELETE /admin/teams/{teamID}
func (h *RosterHandler) DeleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.rosterService.DeleteTeam(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadFlagHandler handles POST /admin/teams/{teamID}/flag with a
// multipart "flag" file field.
func (h *RosterHandler) UploadFlagHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxFlagSize); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("flag")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	t, err := h.rosterService.UploadTeamFlag(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
