package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annolab/facepair/internal/ledger"
)

const validExplanation = "the eye spacing and jawline are clearly consistent"

func newAnnotateHandler(t *testing.T, led ledger.Ledger) *AnnotateHandler {
	t.Helper()
	return NewAnnotateHandler(testConfig(), testResolver(t), led)
}

func TestAnnotateHandler_Current(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	req := requestWithSession("GET", "/api/v1/annotate/current", nil, session)
	recorder := httptest.NewRecorder()

	handler.Current(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response CurrentResponse
	parseJSONResponse(t, recorder, &response)

	if response.State != "annotating" {
		t.Errorf("expected state annotating, got %q", response.State)
	}
	if response.Pair == nil {
		t.Fatal("expected a current pair")
	}
	if response.Pair.Index != 1 {
		t.Errorf("expected the first catalog pair, got %d", response.Pair.Index)
	}
	if response.Pair.ImageAURL == "" || response.Pair.ImageBURL == "" {
		t.Error("expected resolved image URLs")
	}
	if response.Review != nil {
		t.Error("expected no review block outside review")
	}
}

func TestAnnotateHandler_Current_SuperUserForbidden(t *testing.T) {
	cat := testCatalog(t)
	handler := newAnnotateHandler(t, ledger.NewMemory())

	req := requestWithSession("GET", "/api/v1/annotate/current", nil, reviewSession(cat))
	recorder := httptest.NewRecorder()

	handler.Current(recorder, req)

	assertStatusCode(t, recorder, http.StatusForbidden)
}

func TestAnnotateHandler_Submit_CorrectAdvances(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	// Pair 1 ground truth is "same".
	body := []byte(`{"decision": "same", "explanation": "` + validExplanation + `"}`)
	req := requestWithSession("POST", "/api/v1/annotate/submit", body, session)
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response CurrentResponse
	parseJSONResponse(t, recorder, &response)

	if response.State != "annotating" {
		t.Errorf("expected state annotating, got %q", response.State)
	}
	if response.Pair == nil || response.Pair.Index != 2 {
		t.Error("expected to advance to pair 2")
	}
	if response.Progress.Completed != 1 {
		t.Errorf("expected 1 completed pair, got %d", response.Progress.Completed)
	}

	records := led.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(records))
	}
	if !records[0].IsCorrect {
		t.Error("expected the record to be marked correct")
	}
}

func TestAnnotateHandler_Submit_IncorrectEntersReview(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	// Pair 1 ground truth is "same"; answer "different".
	body := []byte(`{"decision": "different", "explanation": "` + validExplanation + `"}`)
	req := requestWithSession("POST", "/api/v1/annotate/submit", body, session)
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response CurrentResponse
	parseJSONResponse(t, recorder, &response)

	if response.State != "reviewing_incorrect" {
		t.Errorf("expected review state, got %q", response.State)
	}
	if response.Review == nil {
		t.Fatal("expected a review block")
	}
	if response.Review.GroundTruth != "same" {
		t.Errorf("expected revealed ground truth same, got %q", response.Review.GroundTruth)
	}
	if response.Review.Decision != "different" {
		t.Errorf("expected snapshotted decision different, got %q", response.Review.Decision)
	}
	if response.Placeholder == "" {
		t.Error("expected a follow-up placeholder")
	}

	// Nothing persisted until the follow-up lands.
	if len(led.Records()) != 0 {
		t.Errorf("expected no ledger records yet, got %d", len(led.Records()))
	}
}

func TestAnnotateHandler_Submit_ShortExplanationRejected(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	body := []byte(`{"decision": "same", "explanation": "too short"}`)
	req := requestWithSession("POST", "/api/v1/annotate/submit", body, session)
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["field"] != "explanation" {
		t.Errorf("expected field explanation, got %q", result["field"])
	}
}

func TestAnnotateHandler_Submit_LedgerOutage(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	led.AppendErr = errors.New("spreadsheet unreachable")

	body := []byte(`{"decision": "same", "explanation": "` + validExplanation + `"}`)
	req := requestWithSession("POST", "/api/v1/annotate/submit", body, session)
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)

	// The pair is still current; the outage clearing makes the retry work.
	led.AppendErr = nil
	retry := requestWithSession("POST", "/api/v1/annotate/submit", body, session)
	retryRec := httptest.NewRecorder()
	handler.Submit(retryRec, retry)
	assertStatusCode(t, retryRec, http.StatusOK)

	if len(led.Records()) != 1 {
		t.Fatalf("expected 1 ledger record after retry, got %d", len(led.Records()))
	}
}

func TestAnnotateHandler_Followup(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	// Enter review with a wrong answer on pair 1.
	submitBody := []byte(`{"decision": "different", "explanation": "` + validExplanation + `"}`)
	submitRec := httptest.NewRecorder()
	handler.Submit(submitRec, requestWithSession("POST", "/api/v1/annotate/submit", submitBody, session))
	assertStatusCode(t, submitRec, http.StatusOK)

	body := []byte(`{"reflection": "I missed that the lighting changed the apparent face shape"}`)
	req := requestWithSession("POST", "/api/v1/annotate/followup", body, session)
	recorder := httptest.NewRecorder()

	handler.Followup(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var response CurrentResponse
	parseJSONResponse(t, recorder, &response)
	if response.State != "annotating" {
		t.Errorf("expected to resume annotating, got %q", response.State)
	}
	if response.Pair == nil || response.Pair.Index != 2 {
		t.Error("expected to advance to pair 2")
	}

	records := led.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(records))
	}
	if records[0].IsCorrect {
		t.Error("expected the record to be marked incorrect")
	}
	if records[0].FollowupExplanation == "" {
		t.Error("expected the follow-up reflection on the record")
	}
}

func TestAnnotateHandler_Followup_WithoutReview(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	body := []byte(`{"reflection": "a perfectly reasonable twenty character reflection"}`)
	req := requestWithSession("POST", "/api/v1/annotate/followup", body, session)
	recorder := httptest.NewRecorder()

	handler.Followup(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestAnnotateHandler_Restart(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	// Complete all three pairs. Ground truths: 1 same, 2 different, 5 same.
	for _, decision := range []string{"same", "different", "same"} {
		body := []byte(`{"decision": "` + decision + `", "explanation": "` + validExplanation + `"}`)
		rec := httptest.NewRecorder()
		handler.Submit(rec, requestWithSession("POST", "/api/v1/annotate/submit", body, session))
		assertStatusCode(t, rec, http.StatusOK)
	}

	currentRec := httptest.NewRecorder()
	handler.Current(currentRec, requestWithSession("GET", "/api/v1/annotate/current", nil, session))
	var current CurrentResponse
	parseJSONResponse(t, currentRec, &current)
	if current.State != "all_complete" {
		t.Fatalf("expected all_complete, got %q", current.State)
	}

	restartRec := httptest.NewRecorder()
	handler.Restart(restartRec, requestWithSession("POST", "/api/v1/annotate/restart", nil, session))
	assertStatusCode(t, restartRec, http.StatusOK)

	var response CurrentResponse
	parseJSONResponse(t, restartRec, &response)
	if response.State != "annotating" {
		t.Errorf("expected annotating after restart, got %q", response.State)
	}
	if response.Progress.Completed != 0 {
		t.Errorf("expected progress reset, got %d completed", response.Progress.Completed)
	}
}

func TestAnnotateHandler_Restart_BeforeCompletion(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	recorder := httptest.NewRecorder()
	handler.Restart(recorder, requestWithSession("POST", "/api/v1/annotate/restart", nil, session))

	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestAnnotateHandler_InstructionsToggle(t *testing.T) {
	cat := testCatalog(t)
	led := ledger.NewMemory()
	handler := newAnnotateHandler(t, led)
	session := annotatorSession(t, cat, led, "alice_smith")

	showRec := httptest.NewRecorder()
	handler.ShowInstructions(showRec, requestWithSession("POST", "/api/v1/annotate/instructions", nil, session))
	assertStatusCode(t, showRec, http.StatusOK)

	var shown CurrentResponse
	parseJSONResponse(t, showRec, &shown)
	if shown.State != "instructions" {
		t.Errorf("expected instructions state, got %q", shown.State)
	}

	continueRec := httptest.NewRecorder()
	handler.Continue(continueRec, requestWithSession("POST", "/api/v1/annotate/continue", nil, session))
	assertStatusCode(t, continueRec, http.StatusOK)

	var resumed CurrentResponse
	parseJSONResponse(t, continueRec, &resumed)
	if resumed.State != "annotating" {
		t.Errorf("expected annotating after continue, got %q", resumed.State)
	}
}
