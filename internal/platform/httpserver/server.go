package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	evaluationengine "tarmac/contexts/community-gallery/evaluation-engine"
	evaluationerrors "tarmac/contexts/community-gallery/evaluation-engine/domain/errors"
	evaluationhttp "tarmac/contexts/community-gallery/evaluation-engine/transport/http"
	notificationservice "tarmac/contexts/community-gallery/notification-service"
	notificationerrors "tarmac/contexts/community-gallery/notification-service/domain/errors"
	notificationhttp "tarmac/contexts/community-gallery/notification-service/transport/http"
	submissionservice "tarmac/contexts/community-gallery/submission-service"
	submissionerrors "tarmac/contexts/community-gallery/submission-service/domain/errors"
	submissionhttp "tarmac/contexts/community-gallery/submission-service/transport/http"
	"tarmac/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "tarmac/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	submissions   submissionservice.Module
	evaluations   evaluationengine.Module
	notifications notificationservice.Module
	metrics       *metrics.Metrics
}

func New(
	submissions submissionservice.Module,
	evaluations evaluationengine.Module,
	notifications notificationservice.Module,
	pipelineMetrics *metrics.Metrics,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if pipelineMetrics == nil {
		pipelineMetrics = metrics.New()
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		submissions:   submissions,
		evaluations:   evaluations,
		notifications: notifications,
		metrics:       pipelineMetrics,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("POST /photos", s.handleAdmitSubmission)
	s.mux.HandleFunc("GET /photos", s.handleApprovedGallery)
	s.mux.HandleFunc("GET /photos/queue", s.handleQueueStatus)
	s.mux.HandleFunc("GET /photos/my", s.handleMySubmissions)

	s.mux.HandleFunc("GET /evaluation/queue", s.handleEvaluationQueue)
	s.mux.HandleFunc("POST /evaluation/{photo_id}", s.handleSubmitEvaluation)
	s.mux.HandleFunc("GET /evaluation/history/{photo_id}", s.handleSubmissionHistory)
	s.mux.HandleFunc("GET /evaluation/evaluator/{evaluator_id}/history", s.handleEvaluatorHistory)

	s.mux.HandleFunc("GET /notifications", s.handleListNotifications)
	s.mux.HandleFunc("GET /notifications/count", s.handleUnreadCount)
	s.mux.HandleFunc("PUT /notifications/{notification_id}/read", s.handleMarkRead)
	s.mux.HandleFunc("PUT /notifications/read-all", s.handleMarkAllRead)
}

func (s *Server) handleAdmitSubmission(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req submissionhttp.AdmitSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSubmissionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.submissions.Handler.AdmitSubmissionHandler(
		r.Context(),
		userID,
		r.Header.Get("X-User-Name"),
		req,
	)
	if err != nil {
		s.metrics.AdmissionsTotal.WithLabelValues(admissionOutcome(err)).Inc()
		writeSubmissionDomainError(w, err)
		return
	}
	s.metrics.AdmissionsTotal.WithLabelValues("admitted").Inc()
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleApprovedGallery(w http.ResponseWriter, r *http.Request) {
	resp, err := s.submissions.Handler.ApprovedGalleryHandler(r.Context(), r.URL.Query().Get("aircraft_type"))
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.submissions.Handler.QueueStatusHandler(r.Context())
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMySubmissions(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeSubmissionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.submissions.Handler.MySubmissionsHandler(r.Context(), userID)
	if err != nil {
		writeSubmissionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluationQueue(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeEvaluationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.evaluations.Handler.PendingQueueHandler(r.Context(), userID, resolveUserTags(r))
	if err != nil {
		writeEvaluationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeEvaluationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req evaluationhttp.SubmitEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEvaluationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.evaluations.Handler.SubmitEvaluationHandler(
		r.Context(),
		r.PathValue("photo_id"),
		userID,
		r.Header.Get("X-User-Name"),
		resolveUserTags(r),
		req,
	)
	if err != nil {
		writeEvaluationDomainError(w, err)
		return
	}
	s.metrics.EvaluationsTotal.Inc()
	if resp.Decided {
		s.metrics.DecisionsTotal.WithLabelValues(resp.Status).Inc()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSubmissionHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeEvaluationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.evaluations.Handler.SubmissionHistoryHandler(
		r.Context(),
		r.PathValue("photo_id"),
		resolveUserTags(r),
	)
	if err != nil {
		writeEvaluationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluatorHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeEvaluationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.evaluations.Handler.EvaluatorHistoryHandler(
		r.Context(),
		r.PathValue("evaluator_id"),
		userID,
		resolveUserTags(r),
	)
	if err != nil {
		writeEvaluationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeNotificationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	resp, err := s.notifications.Handler.ListHandler(r.Context(), userID, unreadOnly)
	if err != nil {
		writeNotificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeNotificationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.notifications.Handler.UnreadCountHandler(r.Context(), userID)
	if err != nil {
		writeNotificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeNotificationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := s.notifications.Handler.MarkReadHandler(r.Context(), userID, r.PathValue("notification_id")); err != nil {
		writeNotificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(userID) == "" {
		writeNotificationError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.notifications.Handler.MarkAllReadHandler(r.Context(), userID)
	if err != nil {
		writeNotificationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func admissionOutcome(err error) string {
	switch {
	case errors.Is(err, submissionerrors.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, submissionerrors.ErrQuotaExceeded):
		return "quota_exceeded"
	default:
		return "rejected"
	}
}

func writeSubmissionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, submissionerrors.ErrInvalidSubmissionInput):
		writeSubmissionError(w, http.StatusBadRequest, "invalid_submission", err.Error())
	case errors.Is(err, submissionerrors.ErrMemberNotFound):
		writeSubmissionError(w, http.StatusNotFound, "member_not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrSubmissionNotFound):
		writeSubmissionError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, submissionerrors.ErrAuthorNotApproved):
		writeSubmissionError(w, http.StatusForbidden, "author_not_approved", err.Error())
	case errors.Is(err, submissionerrors.ErrQuotaExceeded):
		writeSubmissionError(w, http.StatusForbidden, "quota_exceeded",
			"weekly submission quota exceeded; retry after the window resets")
	case errors.Is(err, submissionerrors.ErrQueueFull):
		writeSubmissionError(w, http.StatusTooManyRequests, "queue_full", err.Error())
	default:
		writeSubmissionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEvaluationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, evaluationerrors.ErrInvalidCriteria):
		writeEvaluationError(w, http.StatusBadRequest, "invalid_criteria", err.Error())
	case errors.Is(err, evaluationerrors.ErrSubmissionNotFound):
		writeEvaluationError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, evaluationerrors.ErrEvaluationNotFound):
		writeEvaluationError(w, http.StatusNotFound, "evaluation_not_found", err.Error())
	case errors.Is(err, evaluationerrors.ErrSubmissionAlreadyDecided):
		writeEvaluationError(w, http.StatusConflict, "already_decided", err.Error())
	case errors.Is(err, evaluationerrors.ErrDuplicateEvaluation):
		writeEvaluationError(w, http.StatusConflict, "duplicate_evaluation", err.Error())
	case errors.Is(err, evaluationerrors.ErrConflict):
		writeEvaluationError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, evaluationerrors.ErrSelfEvaluationForbidden):
		writeEvaluationError(w, http.StatusForbidden, "self_evaluation_forbidden", err.Error())
	case errors.Is(err, evaluationerrors.ErrEvaluatorRankRequired):
		writeEvaluationError(w, http.StatusForbidden, "evaluator_rank_required", err.Error())
	case errors.Is(err, evaluationerrors.ErrHistoryAccessRestricted):
		writeEvaluationError(w, http.StatusForbidden, "history_access_restricted", err.Error())
	default:
		writeEvaluationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNotificationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notificationerrors.ErrInvalidRequest):
		writeNotificationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, notificationerrors.ErrNotificationNotFound):
		writeNotificationError(w, http.StatusNotFound, "notification_not_found", err.Error())
	default:
		writeNotificationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSubmissionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, submissionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeEvaluationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, evaluationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeNotificationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, notificationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveUserTags(r *http.Request) []string {
	raw := r.Header.Get("X-User-Tags")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.ToLower(strings.TrimSpace(part)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
