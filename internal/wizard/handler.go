package wizard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// Handler exposes the booking wizard over JSON.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("wizard: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns the wizard routes, meant to be mounted at /api/booking.
// recommendMW wraps only the recommendation endpoint, which calls out to a
// paid text model.
func (h *Handler) Routes(recommendMW ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/sessions", h.Start)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/service", h.SelectService)
		r.Post("/staff", h.SelectStaff)
		r.Post("/date", h.SelectDate)
		r.Post("/time", h.SelectTime)
		r.Patch("/details", h.SetDetail)
		r.Post("/next", h.Next)
		r.Post("/back", h.Back)
		r.Post("/month", h.ViewMonth)
		r.With(recommendMW...).Post("/recommend", h.Recommend)
		r.Post("/confirm", h.Confirm)
	})
	r.Get("/catalog/services", h.ListServices)
	r.Get("/catalog/services/{serviceID}/staff", h.ListEligibleStaff)
	r.Get("/calendar/slots", h.ListSlots)
	r.Get("/calendar/{year}/{month}", h.MonthGrid)
	return r
}

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	SessionID string        `json:"session_id"`
	State     booking.State `json:"state"`
	View      View          `json:"view"`
}

type RecommendResponse struct {
	SessionResponse
	RecommendedServiceID string `json:"recommended_service_id,omitempty"`
	Reasoning            string `json:"reasoning,omitempty"`
	Applied              bool   `json:"applied"`
}

// ErrorResponse carries the refusal reason and, for blocked progression,
// the fields still missing.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

type selectServiceRequest struct {
	ServiceID string `json:"service_id"`
}

type selectStaffRequest struct {
	StaffID string `json:"staff_id"`
}

type selectDateRequest struct {
	Date calendar.Date `json:"date"`
}

type selectTimeRequest struct {
	SlotID string `json:"slot_id"`
}

type setDetailRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type viewMonthRequest struct {
	Offset int `json:"offset"`
}

type recommendRequest struct {
	Query string `json:"query"`
}

// Start handles POST /sessions.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Start(r.Context())
	h.respond(w, http.StatusCreated, sess, err)
}

// Get handles GET /sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), sessionID(r))
	h.respond(w, http.StatusOK, sess, err)
}

// SelectService handles POST /sessions/{sessionID}/service.
func (h *Handler) SelectService(w http.ResponseWriter, r *http.Request) {
	var req selectServiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectService(r.Context(), sessionID(r), req.ServiceID)
	h.respond(w, http.StatusOK, sess, err)
}

// SelectStaff handles POST /sessions/{sessionID}/staff.
func (h *Handler) SelectStaff(w http.ResponseWriter, r *http.Request) {
	var req selectStaffRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectStaff(r.Context(), sessionID(r), req.StaffID)
	h.respond(w, http.StatusOK, sess, err)
}

// SelectDate handles POST /sessions/{sessionID}/date.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req selectDateRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectDate(r.Context(), sessionID(r), req.Date)
	h.respond(w, http.StatusOK, sess, err)
}

// SelectTime handles POST /sessions/{sessionID}/time.
func (h *Handler) SelectTime(w http.ResponseWriter, r *http.Request) {
	var req selectTimeRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectTime(r.Context(), sessionID(r), req.SlotID)
	h.respond(w, http.StatusOK, sess, err)
}

// SetDetail handles PATCH /sessions/{sessionID}/details.
func (h *Handler) SetDetail(w http.ResponseWriter, r *http.Request) {
	var req setDetailRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SetDetail(r.Context(), sessionID(r), req.Field, req.Value)
	h.respond(w, http.StatusOK, sess, err)
}

// Next handles POST /sessions/{sessionID}/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Next(r.Context(), sessionID(r))
	h.respond(w, http.StatusOK, sess, err)
}

// Back handles POST /sessions/{sessionID}/back.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Back(r.Context(), sessionID(r))
	h.respond(w, http.StatusOK, sess, err)
}

// ViewMonth handles POST /sessions/{sessionID}/month.
func (h *Handler) ViewMonth(w http.ResponseWriter, r *http.Request) {
	var req viewMonthRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.ViewMonth(r.Context(), sessionID(r), req.Offset)
	h.respond(w, http.StatusOK, sess, err)
}

// Recommend handles POST /sessions/{sessionID}/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, result, err := h.service.Recommend(r.Context(), sessionID(r), req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := RecommendResponse{
		SessionResponse: h.sessionResponse(sess),
		Applied:         result.Applied,
	}
	if result.Recommendation != nil {
		resp.RecommendedServiceID = result.Recommendation.ServiceID
		resp.Reasoning = result.Recommendation.Reasoning
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /sessions/{sessionID}/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Confirm(r.Context(), sessionID(r))
	h.respond(w, http.StatusOK, sess, err)
}

// ListServices handles GET /catalog/services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": catalog.Categories()})
}

// ListEligibleStaff handles GET /catalog/services/{serviceID}/staff.
func (h *Handler) ListEligibleStaff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceID")
	if _, ok := catalog.ServiceByID(id); !ok {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrUnknownService.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"staff": catalog.EligibleStaff(id)})
}

// ListSlots handles GET /calendar/slots.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"slots": calendar.Slots()})
}

// MonthGrid handles GET /calendar/{year}/{month}; month is zero-based.
func (h *Handler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	m := calendar.Month{Year: year, Month: month}
	if yerr != nil || merr != nil || !m.Valid() {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid year or month"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"title":    m.Title(),
		"month":    m,
		"weekdays": calendar.WeekdayLabels,
		"cells":    calendar.Cells(m, h.service.Today()),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode booking request", "path", r.URL.Path, "error", err)
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, status int, sess Session, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, status, h.sessionResponse(sess))
}

func (h *Handler) sessionResponse(sess Session) SessionResponse {
	return SessionResponse{
		SessionID: sess.ID,
		State:     sess.State,
		View:      h.service.View(sess),
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var pre *booking.PreconditionError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.As(err, &pre):
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Missing: pre.Missing})
	case errors.Is(err, ErrWrongStep), errors.Is(err, ErrUpdateConflict):
		h.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, booking.ErrUnknownField):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case IsRejection(err):
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("booking request failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
