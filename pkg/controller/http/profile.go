package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/qoit/pkg/domain/model"
	"github.com/secmon-lab/qoit/pkg/usecase"
)

func (s *Server) getPublicProfile(w http.ResponseWriter, r *http.Request) {
	pub, err := s.uc.Profile.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPublicProfileResponse(pub))
}

type sendMessageRequest struct {
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Content     string `json:"content"`
	IsUrgent    bool   `json:"is_urgent"`
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	msg, err := s.uc.Message.Send(r.Context(), chi.URLParam(r, "username"), usecase.SendMessageInput{
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		Content:     req.Content,
		IsUrgent:    req.IsUrgent,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toMessageResponse(msg))
}

// getMe opens the owner's dashboard session and returns its state
func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	session, err := s.uc.Dashboard.Open(r.Context(), currentUser(r).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMeResponse(session.View()))
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Title       string `json:"title"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.uc.Profile.Register(r.Context(), currentUser(r), usecase.RegisterInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Title:       req.Title,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toProfileResponse(profile, true))
}

type profileInfoRequest struct {
	DisplayName  model.Patch[string] `json:"display_name"`
	Title        model.Patch[string] `json:"title"`
	AvatarURL    model.Patch[string] `json:"avatar_url"`
	PersonalNote model.Patch[string] `json:"personal_note"`
}

func (s *Server) updateProfileInfo(w http.ResponseWriter, r *http.Request) {
	var req profileInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.uc.Profile.UpdateInfo(r.Context(), currentUser(r).ID, model.ProfileUpdate{
		DisplayName:  req.DisplayName,
		Title:        req.Title,
		AvatarURL:    req.AvatarURL,
		PersonalNote: req.PersonalNote,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toProfileResponse(profile, true))
}

// releaseSession closes the dashboard session, dropping edits not yet saved
func (s *Server) releaseSession(w http.ResponseWriter, r *http.Request) {
	s.uc.Dashboard.Release(currentUser(r).ID)
	w.WriteHeader(http.StatusNoContent)
}
