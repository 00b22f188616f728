package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/annolab/facepair/internal/annotation"
	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/images"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondTransitionError maps a state machine error to an HTTP response.
// Validation failures carry the offending field so the frontend can show
// the message inline; wrong-state actions are conflicts; anything else is
// a persistence failure that leaves the form intact for retry.
func respondTransitionError(w http.ResponseWriter, err error) {
	var verr *annotation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, annotation.ErrWrongState):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

// pairView is the pair payload shared by the annotation and review
// screens: catalog fields plus resolved display URLs.
type pairView struct {
	Index     int    `json:"index"`
	ImageA    string `json:"image_a"`
	ImageB    string `json:"image_b"`
	ImageAURL string `json:"image_a_url"`
	ImageBURL string `json:"image_b_url"`
	CelebID   string `json:"celeb_id,omitempty"`
}

func newPairView(rec catalog.PairRecord, resolver *images.Resolver) pairView {
	return pairView{
		Index:     rec.Index,
		ImageA:    rec.ImageA,
		ImageB:    rec.ImageB,
		ImageAURL: resolver.DisplayURL(rec.ImageA),
		ImageBURL: resolver.DisplayURL(rec.ImageB),
		CelebID:   rec.CelebID,
	}
}

// progressView reports how far an annotator is through the catalog.
type progressView struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Fraction  float64 `json:"fraction"`
}

func newProgressView(completed, total int) progressView {
	p := progressView{Completed: completed, Total: total}
	if total > 0 {
		p.Fraction = float64(completed) / float64(total)
	}
	return p
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
