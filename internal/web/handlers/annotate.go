package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/annolab/facepair/internal/annotation"
	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/images"
	"github.com/annolab/facepair/internal/ledger"
	"github.com/annolab/facepair/internal/web/middleware"
)

// AnnotateHandler drives the annotation flow: current pair, submit,
// follow-up reflection, restart, and the instructions toggles.
type AnnotateHandler struct {
	config   *config.Config
	resolver *images.Resolver
	ledger   ledger.Ledger
}

func NewAnnotateHandler(cfg *config.Config, resolver *images.Resolver, led ledger.Ledger) *AnnotateHandler {
	return &AnnotateHandler{
		config:   cfg,
		resolver: resolver,
		ledger:   led,
	}
}

// annotationSession pulls the annotation state out of the request session.
// Review sessions have no annotation flow.
func (h *AnnotateHandler) annotationSession(w http.ResponseWriter, r *http.Request) (*middleware.Session, *annotation.Session) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil
	}
	if session.SuperUser || session.Annotation == nil {
		respondError(w, http.StatusForbidden, "review sessions cannot annotate")
		return nil, nil
	}
	return session, session.Annotation
}

// reviewView reveals the ground truth for an incorrect answer and echoes
// the snapshotted decision so the review screen can render it.
type reviewView struct {
	GroundTruth string `json:"ground_truth"`
	Decision    string `json:"decision"`
	Explanation string `json:"explanation"`
}

// CurrentResponse is the full view model for the annotation screen,
// recomputed from session state on every request.
type CurrentResponse struct {
	State       string       `json:"state"`
	AnnotatorID string       `json:"annotator_id"`
	Progress    progressView `json:"progress"`
	Pair        *pairView    `json:"pair,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	MinTextLen  int          `json:"min_explanation_length"`
	Review      *reviewView  `json:"review,omitempty"`
}

func (h *AnnotateHandler) currentResponse(s *annotation.Session) CurrentResponse {
	completed, total := s.Progress()
	resp := CurrentResponse{
		State:       string(s.State()),
		AnnotatorID: s.AnnotatorID(),
		Progress:    newProgressView(completed, total),
		MinTextLen:  h.config.Validation.MinExplanationLength,
	}

	if pair, ok := s.CurrentPair(); ok {
		pv := newPairView(pair, h.resolver)
		resp.Pair = &pv
	}

	if snap := s.Pending(); snap != nil {
		resp.Review = &reviewView{
			GroundTruth: strings.ToLower(strings.TrimSpace(snap.Pair.GroundTruth)),
			Decision:    snap.Decision.String(),
			Explanation: snap.Explanation,
		}
		resp.Placeholder = followupPlaceholder(snap.Decision)
	}
	return resp
}

// followupPlaceholder prompts the annotator to look for the evidence they
// missed, phrased for the direction of the mistake.
func followupPlaceholder(decision catalog.Label) string {
	if decision == catalog.LabelSame {
		return "You answered same, but these are different people. What differences did you overlook?"
	}
	return "You answered different, but this is the same person. What similarities did you overlook?"
}

// Current returns the view model for the annotator's current screen.
func (h *AnnotateHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	respondJSON(w, http.StatusOK, h.currentResponse(s))
}

type submitRequest struct {
	Decision    string `json:"decision"`
	Explanation string `json:"explanation"`
}

// Submit records a decision plus explanation for the current pair.
func (h *AnnotateHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session.Lock()
	defer session.Unlock()

	if err := s.Submit(r.Context(), h.ledger, req.Decision, req.Explanation); err != nil {
		respondTransitionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.currentResponse(s))
}

type followupRequest struct {
	Reflection string `json:"reflection"`
}

// Followup finishes the review of an incorrect answer with a reflection.
func (h *AnnotateHandler) Followup(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}

	var req followupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session.Lock()
	defer session.Unlock()

	if err := s.SubmitFollowup(r.Context(), h.ledger, req.Reflection); err != nil {
		respondTransitionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.currentResponse(s))
}

// Restart empties the completed set for a re-annotation pass.
func (h *AnnotateHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	if err := s.Restart(); err != nil {
		respondTransitionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.currentResponse(s))
}

// ShowInstructions switches the session to the instructions screen
// without touching progress.
func (h *AnnotateHandler) ShowInstructions(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	s.ViewInstructions()
	respondJSON(w, http.StatusOK, h.currentResponse(s))
}

// Continue leaves the instructions screen and resumes annotating.
func (h *AnnotateHandler) Continue(w http.ResponseWriter, r *http.Request) {
	session, s := h.annotationSession(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	if err := s.ContinueAnnotating(); err != nil {
		respondTransitionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.currentResponse(s))
}
