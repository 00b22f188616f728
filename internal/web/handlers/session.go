package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/annolab/facepair/internal/annotation"
	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/ledger"
	"github.com/annolab/facepair/internal/review"
	"github.com/annolab/facepair/internal/web/middleware"
)

// SessionHandler handles login, logout and the instructions page.
type SessionHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	catalog        *catalog.Catalog
	ledger         ledger.Ledger
	rules          annotation.Rules
}

func NewSessionHandler(cfg *config.Config, sm *middleware.SessionManager, cat *catalog.Catalog, led ledger.Ledger) *SessionHandler {
	return &SessionHandler{
		config:         cfg,
		sessionManager: sm,
		catalog:        cat,
		ledger:         led,
		rules: annotation.Rules{
			MinAnnotatorIDLength: cfg.Validation.MinAnnotatorIDLength,
			MinExplanationLength: cfg.Validation.MinExplanationLength,
		},
	}
}

type loginRequest struct {
	AnnotatorID string `json:"annotator_id"`
}

// LoginResponse reports the session created for an annotator.
type LoginResponse struct {
	Success     bool         `json:"success"`
	SuperUser   bool         `json:"super_user"`
	AnnotatorID string       `json:"annotator_id,omitempty"`
	State       string       `json:"state,omitempty"`
	Progress    progressView `json:"progress"`
	Error       string       `json:"error,omitempty"`
}

// Login validates the annotator id, reconciles progress and routes super
// users to the review browser. An existing session is reused so logging in
// again as the same annotator keeps its cached completed set.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id := strings.TrimSpace(req.AnnotatorID)
	if err := h.rules.ValidateAnnotatorID(id); err != nil {
		respondTransitionError(w, err)
		return
	}

	session := h.sessionManager.GetSessionFromRequest(r)
	if session == nil {
		session = h.sessionManager.CreateSession()
	}
	session.Lock()
	defer session.Unlock()

	if h.config.IsSuperUser(id) {
		session.SuperUser = true
		session.Annotation = nil
		if session.Review == nil {
			session.Review = review.NewBrowser(h.catalog)
		}
		h.sessionManager.SetSessionCookie(w, session)
		respondJSON(w, http.StatusOK, LoginResponse{
			Success:     true,
			SuperUser:   true,
			AnnotatorID: id,
			Progress:    newProgressView(0, h.catalog.Len()),
		})
		return
	}

	session.SuperUser = false
	session.Review = nil
	if session.Annotation == nil {
		session.Annotation = annotation.NewSession(h.catalog, h.rules)
	}
	if err := session.Annotation.Login(r.Context(), id, h.ledger); err != nil {
		respondTransitionError(w, err)
		return
	}

	h.sessionManager.SetSessionCookie(w, session)

	completed, total := session.Annotation.Progress()
	respondJSON(w, http.StatusOK, LoginResponse{
		Success:     true,
		AnnotatorID: session.Annotation.AnnotatorID(),
		State:       string(session.Annotation.State()),
		Progress:    newProgressView(completed, total),
	})
}

// Logout is the "switch annotator" action: the server session and its
// progress cache are discarded entirely, so the next login reconciles
// from the ledger again.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessionManager.GetSessionFromRequest(r); session != nil {
		session.Lock()
		if session.Annotation != nil {
			session.Annotation.SwitchAnnotator()
		}
		session.Unlock()
		h.sessionManager.DeleteSession(session.ID)
	}

	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse reports whether the request carries a live session.
type StatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	SuperUser     bool   `json:"super_user,omitempty"`
	AnnotatorID   string `json:"annotator_id,omitempty"`
	State         string `json:"state,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

// Status checks if the user is authenticated by validating the session.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := h.sessionManager.GetSessionFromRequest(r)
	if session == nil {
		respondJSON(w, http.StatusOK, StatusResponse{Authenticated: false})
		return
	}

	session.Lock()
	defer session.Unlock()

	resp := StatusResponse{
		Authenticated: true,
		SuperUser:     session.SuperUser,
		ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if session.Annotation != nil {
		resp.AnnotatorID = session.Annotation.AnnotatorID()
		resp.State = string(session.Annotation.State())
	}
	respondJSON(w, http.StatusOK, resp)
}

// InstructionsResponse is the instructions page content plus, for a
// returning annotator, their reconciled progress.
type InstructionsResponse struct {
	Instructions config.Instructions `json:"instructions"`
	MinIDLength  int                 `json:"min_annotator_id_length"`
	MinTextLen   int                 `json:"min_explanation_length"`
	AnnotatorID  string              `json:"annotator_id,omitempty"`
	Progress     *progressView       `json:"progress,omitempty"`
}

// Instructions serves the embedded instructions content. No session is
// required: this is the entry screen.
func (h *SessionHandler) Instructions(w http.ResponseWriter, r *http.Request) {
	resp := InstructionsResponse{
		Instructions: h.config.Instructions,
		MinIDLength:  h.config.Validation.MinAnnotatorIDLength,
		MinTextLen:   h.config.Validation.MinExplanationLength,
	}

	// Welcome-back block for a logged-in annotator.
	if session := h.sessionManager.GetSessionFromRequest(r); session != nil {
		session.Lock()
		if session.Annotation != nil && session.Annotation.AnnotatorID() != "" {
			resp.AnnotatorID = session.Annotation.AnnotatorID()
			completed, total := session.Annotation.Progress()
			p := newProgressView(completed, total)
			resp.Progress = &p
		}
		session.Unlock()
	}

	respondJSON(w, http.StatusOK, resp)
}
