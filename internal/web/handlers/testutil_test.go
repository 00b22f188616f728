package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/annolab/facepair/internal/annotation"
	"github.com/annolab/facepair/internal/catalog"
	"github.com/annolab/facepair/internal/config"
	"github.com/annolab/facepair/internal/images"
	"github.com/annolab/facepair/internal/ledger"
	"github.com/annolab/facepair/internal/review"
	"github.com/annolab/facepair/internal/web/middleware"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Validation: config.ValidationConfig{
			MinAnnotatorIDLength: 5,
			MinExplanationLength: 20,
		},
		Web: config.WebConfig{
			SuperUsers:    []string{"admin_reviewer"},
			SessionSecret: "test-secret",
		},
		Instructions: config.Instructions{
			Title:    "Face Pair Annotation",
			Overview: "Judge whether two face photos show the same person.",
		},
	}
}

// testCatalog writes a small pair catalog to a temp file and loads it.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pairs.csv")
	content := "index,A,B,ground_truth,celeb_id\n" +
		"1,lfw_0001_a.jpg,lfw_0001_b.jpg,same,celeb_01\n" +
		"2,lfw_0002_a.jpg,lfw_0002_b.jpg,different,celeb_02\n" +
		"5,celeba_0005_a.jpg,celeba_0005_b.jpg,same,celeb_03\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return c
}

// testResolver resolves images through the local endpoint.
func testResolver(t *testing.T) *images.Resolver {
	t.Helper()
	return images.NewResolver(images.ModeLocal, t.TempDir(), "")
}

// annotatorSession builds a logged-in annotator session ready to put in a
// request context.
func annotatorSession(t *testing.T, cat *catalog.Catalog, led ledger.Ledger, annotatorID string) *middleware.Session {
	t.Helper()
	rules := annotation.Rules{MinAnnotatorIDLength: 5, MinExplanationLength: 20}
	s := annotation.NewSession(cat, rules)
	if err := s.Login(context.Background(), annotatorID, led); err != nil {
		t.Fatalf("failed to log in annotator: %v", err)
	}
	return &middleware.Session{ID: "test-session", Annotation: s}
}

// reviewSession builds a super-user session with a review browser.
func reviewSession(cat *catalog.Catalog) *middleware.Session {
	return &middleware.Session{
		ID:        "test-review-session",
		SuperUser: true,
		Review:    review.NewBrowser(cat),
	}
}

// ledgerRecord builds a minimal ledger row for seeding progress.
func ledgerRecord(annotatorID string, pairIndex int) ledger.AnnotationRecord {
	return ledger.AnnotationRecord{
		AnnotatorID:        annotatorID,
		PairIndex:          pairIndex,
		HumanDecision:      "same",
		InitialExplanation: "matching jawline and eye spacing across both photos",
		IsCorrect:          true,
	}
}

// requestWithSession creates a request with a session in context, the way
// RequireSession does it in production.
func requestWithSession(method, path string, body []byte, session *middleware.Session) *http.Request {
	var reader *bytes.Buffer
	if body == nil {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBuffer(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.SetSessionInContext(req.Context(), session))
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
