package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

// session returns the dashboard session of the current owner
func (s *Server) session(r *http.Request) (*usecase.Dashboard, error) {
	return s.uc.Dashboard.Open(r.Context(), currentUser(r).ID)
}

type statusRequest struct {
	Status types.StatusMode `json:"status"`
}

func (s *Server) putStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	change, err := session.SetStatus(r.Context(), req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toStatusChangeResponse(change))
}

type detailsRequest struct {
	StatusMessage     model.Patch[string]    `json:"status_message"`
	BackAt            model.Patch[time.Time] `json:"back_at"`
	EmailResponseTime model.Patch[string]    `json:"email_response_time"`
	DMResponseTime    model.Patch[string]    `json:"dm_response_time"`
	UrgentMethod      model.Patch[string]    `json:"urgent_method"`
}

// patchDetails queues detail edits. They are saved once the owner stops
// editing, so the response only reports the pending state.
func (s *Server) patchDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := session.EditDetails(model.ProfileUpdate{
		StatusMessage:     req.StatusMessage,
		BackAt:            req.BackAt,
		EmailResponseTime: req.EmailResponseTime,
		DMResponseTime:    req.DMResponseTime,
		UrgentMethod:      req.UrgentMethod,
	}); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, toMeResponse(session.View()))
}

func (s *Server) getPicker(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, session.Picker().View())
}

type presetRequest struct {
	Minutes int64 `json:"minutes"`
}

// postPreset commits now plus the preset duration
func (s *Server) postPreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Minutes < 0 {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "minutes must not be negative", goerr.V("minutes", req.Minutes)))
		return
	}

	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	session.Picker().SelectPreset(req.Minutes)
	writeJSON(w, r, http.StatusOK, toMeResponse(session.View()))
}

type tapRequest struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// postTap moves the slider to the tapped position. The return time is
// committed after the tap delay, so the response is accepted, not final.
func (s *Server) postTap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Width <= 0 {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "track width must be positive", goerr.V("width", req.Width)))
		return
	}

	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	session.Picker().TapTrack(req.X, req.Width)
	writeJSON(w, r, http.StatusAccepted, session.Picker().View())
}

// clearBackAt clears the return time, which returns the owner to available
func (s *Server) clearBackAt(w http.ResponseWriter, r *http.Request) {
	session, err := s.session(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	session.Picker().Clear()
	writeJSON(w, r, http.StatusOK, toMeResponse(session.View()))
}
