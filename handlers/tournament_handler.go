package handlers

import (
	"net/http"

	"github.com/7893/PaddlePal/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

// InfoHandler handles GET /tournament
func (h *TournamentHandler) InfoHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.tournamentService.Info(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// OverviewHandler handles GET /overview
func (h *TournamentHandler) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	ov, err := h.tournamentService.Overview(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, ov, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /admin/tournament
func (h *TournamentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.TournamentUpdateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	t, err := h.tournamentService.Update(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": t}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListNoticesHandler handles GET /notices
func (h *TournamentHandler) ListNoticesHandler(w http.ResponseWriter, r *http.Request) {
	notices, err := h.tournamentService.ListNotices(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"notices": notices}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type noticeInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNoticeHandler handles POST /admin/notices
func (h *TournamentHandler) CreateNoticeHandler(w http.ResponseWriter, r *http.Request) {
	var input noticeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n, err := h.tournamentService.CreateNotice(r.Context(), input.Title, input.Content)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"notice": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateNoticeHandler handles PUT /admin/notices/{noticeID}
func (h *TournamentHandler) UpdateNoticeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "noticeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input noticeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n, err := h.tournamentService.UpdateNotice(r.Context(), id, input.Title, input.Content)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"notice": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteNoticeHandler handles DELETE /admin/notices/{noticeID}
func (h *TournamentHandler) DeleteNoticeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "noticeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.DeleteNotice(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BackupHandler handles GET /admin/backup
func (h *TournamentHandler) BackupHandler(w http.ResponseWriter, r *http.Request) {
	dump, err := h.tournamentService.Backup(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	headers := http.Header{}
	headers.Set("Content-Disposition", `attachment; filename="backup.json"`)
	if err := writeJSON(w, http.StatusOK, dump, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}
