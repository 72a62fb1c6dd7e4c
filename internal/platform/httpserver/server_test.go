package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	evaluationengine "tarmac/contexts/community-gallery/evaluation-engine"
	evaluationports "tarmac/contexts/community-gallery/evaluation-engine/ports"
	evaluationhttp "tarmac/contexts/community-gallery/evaluation-engine/transport/http"
	notificationservice "tarmac/contexts/community-gallery/notification-service"
	submissionservice "tarmac/contexts/community-gallery/submission-service"
	submissionentities "tarmac/contexts/community-gallery/submission-service/domain/entities"
	submissionhttp "tarmac/contexts/community-gallery/submission-service/transport/http"
	"tarmac/internal/platform/metrics"
)

func newTestServer() *Server {
	return New(
		submissionservice.NewInMemoryModule(nil, slog.Default()),
		evaluationengine.NewInMemoryModule(nil, slog.Default()),
		notificationservice.NewInMemoryModule(slog.Default()),
		metrics.New(),
		slog.Default(),
		":0",
	)
}

func TestAdmitSubmissionRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"title":"Short final at dusk"}`)
	req := httptest.NewRequest(http.MethodPost, "/photos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdmitSubmissionAdmitsApprovedMember(t *testing.T) {
	server := newTestServer()
	server.submissions.Store.SetMember(submissionentities.Member{
		MemberID: "author-1",
		Name:     "Ana",
		Approved: true,
	})

	body := []byte(`{"title":"Short final at dusk","aircraft_type":"widebody"}`)
	req := httptest.NewRequest(http.MethodPost, "/photos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "author-1")
	req.Header.Set("X-User-Name", "Ana")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp submissionhttp.SubmissionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected pending status, got %q", resp.Status)
	}
	if resp.QueuePosition != 1 {
		t.Fatalf("expected queue position 1, got %d", resp.QueuePosition)
	}
}

func TestAdmitSubmissionUnapprovedMemberForbidden(t *testing.T) {
	server := newTestServer()
	server.submissions.Store.SetMember(submissionentities.Member{
		MemberID: "author-2",
		Approved: false,
	})

	body := []byte(`{"title":"Taxiing in the rain"}`)
	req := httptest.NewRequest(http.MethodPost, "/photos", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "author-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestApprovedGalleryIsPublic(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/photos", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestQueueStatusReportsCapacity(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/photos/queue", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp submissionhttp.QueueStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.MaxQueueSize != 50 {
		t.Fatalf("expected max queue size 50, got %d", resp.MaxQueueSize)
	}
}

func TestSubmitEvaluationRequiresRank(t *testing.T) {
	server := newTestServer()
	server.evaluations.Store.SetSubmission(evaluationports.SubmissionProjection{
		SubmissionID: "photo-1",
		AuthorID:     "author-1",
		Title:        "Short final at dusk",
	})

	body := []byte(`{"technical_quality":4,"composition":4,"moment_angle":4,"editing":4,"spotter_criteria":4}`)
	req := httptest.NewRequest(http.MethodPost, "/evaluation/photo-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "member-1")
	req.Header.Set("X-User-Tags", "membro")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitEvaluationRecordsAndDecides(t *testing.T) {
	server := newTestServer()
	server.evaluations.Store.SetSubmission(evaluationports.SubmissionProjection{
		SubmissionID: "photo-1",
		AuthorID:     "author-1",
		Title:        "Short final at dusk",
	})
	server.evaluations.Store.SetMember("evaluator-1", []string{"avaliador"})

	body := []byte(`{"technical_quality":4,"composition":3,"moment_angle":5,"editing":4,"spotter_criteria":4}`)
	req := httptest.NewRequest(http.MethodPost, "/evaluation/photo-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "evaluator-1")
	req.Header.Set("X-User-Tags", "avaliador")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp evaluationhttp.SubmitEvaluationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Evaluation.CompositeScore != 4.0 {
		t.Fatalf("expected composite 4.0, got %v", resp.Evaluation.CompositeScore)
	}
	if !resp.Decided || resp.Status != "approved" {
		t.Fatalf("expected approved decision with a single-evaluator pool, got decided=%v status=%q", resp.Decided, resp.Status)
	}
}

func TestSubmitEvaluationRejectsMalformedBody(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/evaluation/photo-1", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "evaluator-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestEvaluationQueueRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/evaluation/queue", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestNotificationsRequireUserHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPut, "/notifications/missing/read", nil)
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
