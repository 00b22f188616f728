package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/images"
	"github.com/annolab/facepair/internal/review"
	"github.com/annolab/facepair/internal/web/middleware"
)

// ReviewHandler exposes the super-user catalog browser: filtered
// navigation over every pair with its ground truth visible, plus the
// session-scoped flag list and its file export.
type ReviewHandler struct {
	catalog  *catalog.Catalog
	resolver *images.Resolver
}

func NewReviewHandler(cat *catalog.Catalog, resolver *images.Resolver) *ReviewHandler {
	return &ReviewHandler{catalog: cat, resolver: resolver}
}

// browser pulls the review browser out of the request session. The router
// guards these routes with RequireSuperUser, so a missing browser means a
// stale or malformed session.
func (h *ReviewHandler) browser(w http.ResponseWriter, r *http.Request) (*middleware.Session, *review.Browser) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil || session.Review == nil {
		respondError(w, http.StatusForbidden, "super user access required")
		return nil, nil
	}
	return session, session.Review
}

// ReviewResponse is the view model for the review screen: the pair under
// the cursor with its ground truth, the active filter and the dropdown
// data to adjust it.
type ReviewResponse struct {
	Pair        *pairView      `json:"pair,omitempty"`
	GroundTruth string         `json:"ground_truth,omitempty"`
	Position    int            `json:"position"`
	Total       int            `json:"total"`
	Filter      catalog.Filter `json:"filter"`
	Datasets    []string       `json:"datasets"`
	FlagCount   int            `json:"flag_count"`
}

func (h *ReviewHandler) reviewResponse(b *review.Browser) ReviewResponse {
	resp := ReviewResponse{
		Position:  b.Position(),
		Total:     b.Len(),
		Filter:    b.Filter(),
		Datasets:  h.catalog.Datasets(),
		FlagCount: len(b.Flags()),
	}
	if rec, ok := b.Current(); ok {
		pv := newPairView(rec, h.resolver)
		resp.Pair = &pv
		resp.GroundTruth = strings.ToLower(strings.TrimSpace(rec.GroundTruth))
	}
	return resp
}

// Current returns the pair under the cursor.
func (h *ReviewHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	respondJSON(w, http.StatusOK, h.reviewResponse(b))
}

// SetFilter replaces the active filter. The position is clamped into the
// new view, so narrowing the filter never strands the cursor.
func (h *ReviewHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}

	var f catalog.Filter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if f.GroundTruth != "" {
		label, err := catalog.ParseLabel(f.GroundTruth)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.GroundTruth = label.String()
	}

	session.Lock()
	defer session.Unlock()

	b.SetFilter(f)
	respondJSON(w, http.StatusOK, h.reviewResponse(b))
}

// Prev moves the cursor back one pair.
func (h *ReviewHandler) Prev(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	b.Prev()
	respondJSON(w, http.StatusOK, h.reviewResponse(b))
}

// Next moves the cursor forward one pair.
func (h *ReviewHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	b.Next()
	respondJSON(w, http.StatusOK, h.reviewResponse(b))
}

type jumpRequest struct {
	Index int `json:"index"`
}

// Jump moves the cursor to a pair index, snapping to the nearest match in
// the filtered view.
func (h *ReviewHandler) Jump(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}

	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session.Lock()
	defer session.Unlock()

	if err := b.Jump(req.Index); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.reviewResponse(b))
}

type flagRequest struct {
	Index          int    `json:"index"`
	IssueType      string `json:"issue_type"`
	SuggestedTruth string `json:"suggested_ground_truth"`
	Notes          string `json:"notes"`
}

// AddFlag records a metadata problem for a pair. Re-flagging the same pair
// replaces the earlier flag in every read.
func (h *ReviewHandler) AddFlag(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	session.Lock()
	defer session.Unlock()

	err := b.Flag(review.Flag{
		Index:          req.Index,
		Issue:          review.IssueType(req.IssueType),
		SuggestedTruth: req.SuggestedTruth,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"flag_count": len(b.Flags()),
	})
}

// ListFlags returns the deduplicated flag list.
func (h *ReviewHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	flags := b.Flags()
	respondJSON(w, http.StatusOK, map[string]any{
		"flags": flags,
		"count": len(flags),
	})
}

// ExportFlags downloads the flag list as a CSV attachment. An empty list
// exports as just the header row.
func (h *ReviewHandler) ExportFlags(w http.ResponseWriter, r *http.Request) {
	session, b := h.browser(w, r)
	if session == nil {
		return
	}
	session.Lock()
	defer session.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="review_flags.csv"`)
	if err := b.ExportCSV(w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to export flags")
	}
}
