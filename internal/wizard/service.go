package wizard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/internal/observability/metrics"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

var (
	ErrUnknownService     = errors.New("wizard: unknown service")
	ErrUnknownStaff       = errors.New("wizard: unknown staff member")
	ErrStaffNotEligible   = errors.New("wizard: staff member does not perform the selected service")
	ErrDateNotSelectable  = errors.New("wizard: date is in the past")
	ErrUnknownSlot        = errors.New("wizard: unknown time slot")
	ErrSlotUnavailable    = errors.New("wizard: time slot is already booked")
	ErrInvalidMonthOffset = errors.New("wizard: month offset must be -1 or 1")
	ErrWrongStep          = errors.New("wizard: action not available on the current step")
)

// AnyStaffID selects "Any Available" in SelectStaff, as does the empty string.
const AnyStaffID = "any"

// Action names used for metrics and logs.
const (
	actionStart     = "start"
	actionService   = "select_service"
	actionStaff     = "select_staff"
	actionDate      = "select_date"
	actionTime      = "select_time"
	actionDetail    = "set_detail"
	actionNext      = "next"
	actionBack      = "back"
	actionMonth     = "view_month"
	actionRecommend = "recommend"
	actionConfirm   = "confirm"
)

// Confirmer receives the finished booking. Its result is logged but never
// changes what the wizard does.
type Confirmer interface {
	Confirmed(ctx context.Context, s booking.State) error
}

// RecommendResult is the outcome of one recommendation request.
type RecommendResult struct {
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	Applied        bool                      `json:"applied"`
}

// Service runs wizard actions against stored sessions. Every action loads
// the session, derives the next aggregate through the booking package and
// writes it back atomically.
type Service struct {
	store      Store
	suggester  recommend.Suggester
	confirmer  Confirmer
	logger     *logging.Logger
	metrics    *metrics.WizardMetrics
	recMetrics *metrics.RecommendMetrics
	now        func() time.Time
	loc        *time.Location
}

type Option func(*Service)

func WithSuggester(s recommend.Suggester) Option {
	return func(svc *Service) { svc.suggester = s }
}

func WithConfirmer(c Confirmer) Option {
	return func(svc *Service) { svc.confirmer = c }
}

func WithMetrics(m *metrics.WizardMetrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// WithRecommendMetrics counts recommendation results dropped as stale.
func WithRecommendMetrics(m *metrics.RecommendMetrics) Option {
	return func(svc *Service) { svc.recMetrics = m }
}

// WithClock overrides the wall clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithLocation sets the time zone whose calendar day counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(svc *Service) {
		if loc != nil {
			svc.loc = loc
		}
	}
}

func NewService(store Store, logger *logging.Logger, opts ...Option) *Service {
	if store == nil {
		panic("wizard: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	svc := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Today is the current calendar day in the service's time zone.
func (s *Service) Today() calendar.Date {
	return calendar.Today(s.now(), s.loc)
}

// Start opens a new session on the initial aggregate with the calendar on
// the current month.
func (s *Service) Start(ctx context.Context) (Session, error) {
	sess := Session{
		ID:        uuid.NewString(),
		State:     booking.Initial(),
		ViewMonth: calendar.MonthOf(s.Today()),
		UpdatedAt: s.now().UTC(),
	}
	err := s.store.Create(ctx, sess)
	s.observe(actionStart, err)
	if err != nil {
		return Session{}, err
	}
	s.metrics.ObserveSessionStarted()
	s.logger.Debug("booking session started", "session_id", sess.ID)
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Load(ctx, id)
}

// SelectService picks a service. A specific professional who cannot
// perform the new service is cleared.
func (s *Service) SelectService(ctx context.Context, id, serviceID string) (Session, error) {
	svc, ok := catalog.ServiceByID(serviceID)
	if !ok {
		s.observe(actionService, ErrUnknownService)
		return Session{}, ErrUnknownService
	}
	return s.update(ctx, id, actionService, func(sess *Session) error {
		if err := requireStep(sess, booking.StepService); err != nil {
			return err
		}
		sess.State = withService(sess.State, svc)
		return nil
	})
}

// SelectStaff records the staff choice. An empty id or AnyStaffID means
// "Any Available"; a specific member must perform the selected service.
func (s *Service) SelectStaff(ctx context.Context, id, staffID string) (Session, error) {
	if staffID == "" || staffID == AnyStaffID {
		choice := booking.AnyStaff()
		return s.update(ctx, id, actionStaff, func(sess *Session) error {
			if err := requireStep(sess, booking.StepStaff); err != nil {
				return err
			}
			sess.State = booking.Apply(sess.State, booking.Patch{Staff: &choice})
			return nil
		})
	}
	member, ok := catalog.StaffByID(staffID)
	if !ok {
		s.observe(actionStaff, ErrUnknownStaff)
		return Session{}, ErrUnknownStaff
	}
	choice := booking.SpecificStaff(member.ID)
	return s.update(ctx, id, actionStaff, func(sess *Session) error {
		if err := requireStep(sess, booking.StepStaff); err != nil {
			return err
		}
		if sess.State.Service == nil || !member.CanPerform(sess.State.Service.ID) {
			return ErrStaffNotEligible
		}
		sess.State = booking.Apply(sess.State, booking.Patch{Staff: &choice})
		return nil
	})
}

// SelectDate picks an appointment day. Days before today are refused.
func (s *Service) SelectDate(ctx context.Context, id string, date calendar.Date) (Session, error) {
	if date.IsZero() || !date.Selectable(s.Today()) {
		s.observe(actionDate, ErrDateNotSelectable)
		return Session{}, ErrDateNotSelectable
	}
	return s.update(ctx, id, actionDate, func(sess *Session) error {
		if err := requireStep(sess, booking.StepDateTime); err != nil {
			return err
		}
		sess.State = booking.Apply(sess.State, booking.Patch{Date: &date})
		return nil
	})
}

// SelectTime picks a slot from the fixed daily list. Booked slots are refused.
func (s *Service) SelectTime(ctx context.Context, id, slotID string) (Session, error) {
	slot, ok := calendar.SlotByID(slotID)
	if !ok {
		s.observe(actionTime, ErrUnknownSlot)
		return Session{}, ErrUnknownSlot
	}
	if !slot.Available {
		s.observe(actionTime, ErrSlotUnavailable)
		return Session{}, ErrSlotUnavailable
	}
	return s.update(ctx, id, actionTime, func(sess *Session) error {
		if err := requireStep(sess, booking.StepDateTime); err != nil {
			return err
		}
		sess.State = booking.Apply(sess.State, booking.Patch{TimeSlot: &slot})
		return nil
	})
}

// SetDetail edits one contact field.
func (s *Service) SetDetail(ctx context.Context, id, field, value string) (Session, error) {
	return s.update(ctx, id, actionDetail, func(sess *Session) error {
		if err := requireStep(sess, booking.StepDetails); err != nil {
			return err
		}
		customer, err := sess.State.Customer.WithField(field, value)
		if err != nil {
			return err
		}
		sess.State = booking.Apply(sess.State, booking.Patch{Customer: &customer})
		return nil
	})
}

// Next advances when the current step's requirements are met. Leaving the
// staff step without a choice commits "Any Available".
func (s *Service) Next(ctx context.Context, id string) (Session, error) {
	return s.update(ctx, id, actionNext, func(sess *Session) error {
		state := sess.State
		if state.Step == booking.StepStaff && state.Staff.IsUnset() {
			choice := booking.AnyStaff()
			state = booking.Apply(state, booking.Patch{Staff: &choice})
		}
		if err := booking.Precondition(state); err != nil {
			return err
		}
		sess.State = booking.Advance(state)
		return nil
	})
}

func (s *Service) Back(ctx context.Context, id string) (Session, error) {
	return s.update(ctx, id, actionBack, func(sess *Session) error {
		sess.State = booking.Retreat(sess.State)
		return nil
	})
}

// ViewMonth moves the date picker one month back or forward.
func (s *Service) ViewMonth(ctx context.Context, id string, offset int) (Session, error) {
	if offset != -1 && offset != 1 {
		s.observe(actionMonth, ErrInvalidMonthOffset)
		return Session{}, ErrInvalidMonthOffset
	}
	return s.update(ctx, id, actionMonth, func(sess *Session) error {
		if err := requireStep(sess, booking.StepDateTime); err != nil {
			return err
		}
		if sess.ViewMonth.Year == 0 || !sess.ViewMonth.Valid() {
			sess.ViewMonth = calendar.MonthOf(s.Today())
		}
		sess.ViewMonth = sess.ViewMonth.Add(offset)
		return nil
	})
}

// Recommend asks the suggester for a service matching query and, when one
// comes back, selects it exactly as SelectService would. The call runs
// outside the session update; a result that arrives after a newer request
// or after the user left the service step is dropped.
func (s *Service) Recommend(ctx context.Context, id, query string) (Session, RecommendResult, error) {
	if strings.TrimSpace(query) == "" || s.suggester == nil {
		sess, err := s.store.Load(ctx, id)
		s.observe(actionRecommend, err)
		return sess, RecommendResult{}, err
	}

	var token uint64
	_, err := s.store.Update(ctx, id, func(sess *Session) error {
		if err := requireStep(sess, booking.StepService); err != nil {
			return err
		}
		sess.RecommendToken++
		token = sess.RecommendToken
		sess.Query = query
		sess.Pending = true
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		s.observe(actionRecommend, err)
		return Session{}, RecommendResult{}, err
	}

	rec, ok := s.suggester.Suggest(ctx, query)
	var svc catalog.Service
	if ok {
		svc, ok = catalog.ServiceByID(rec.ServiceID)
	}

	// The pending flag must be cleared even if the caller went away while
	// the suggester was running.
	applyCtx := context.WithoutCancel(ctx)
	var (
		result RecommendResult
		stale  string
	)
	sess, err := s.update(applyCtx, id, actionRecommend, func(sess *Session) error {
		result, stale = RecommendResult{}, ""
		if sess.RecommendToken != token {
			stale = "superseded"
			return nil
		}
		sess.Pending = false
		if sess.State.Step != booking.StepService {
			stale = "step_changed"
			return nil
		}
		if !ok {
			sess.Recommendation = nil
			return nil
		}
		applied := rec
		sess.Recommendation = &applied
		sess.State = withService(sess.State, svc)
		result = RecommendResult{Recommendation: &applied, Applied: true}
		return nil
	})
	if err != nil {
		return Session{}, RecommendResult{}, err
	}
	if stale != "" {
		s.logger.Debug("dropping stale recommendation", "session_id", id, "reason", stale)
		s.recMetrics.ObserveOutcome(metrics.OutcomeStale)
	}
	return sess, result, nil
}

// Confirm finishes the booking from the review step: the session goes back
// to the initial aggregate and the finished booking is handed to the
// confirmer. A booking missing any earlier requirement is refused and the
// session is left as it was. A failed hand-off is logged only.
func (s *Service) Confirm(ctx context.Context, id string) (Session, error) {
	var finished booking.State
	sess, err := s.update(ctx, id, actionConfirm, func(sess *Session) error {
		if err := requireStep(sess, booking.StepConfirmation); err != nil {
			return err
		}
		if err := booking.Ready(sess.State); err != nil {
			return err
		}
		finished = sess.State
		sess.State = booking.Confirm(sess.State)
		sess.Query = ""
		sess.Pending = false
		sess.Recommendation = nil
		sess.RecommendToken++
		sess.ViewMonth = calendar.MonthOf(s.Today())
		return nil
	})
	if err != nil {
		return Session{}, err
	}

	if s.confirmer != nil {
		if herr := s.confirmer.Confirmed(ctx, finished); herr != nil {
			s.logger.Error("booking confirmation hand-off failed", "session_id", id, "error", herr)
			s.metrics.ObserveConfirmation(false)
			return sess, nil
		}
	}
	s.metrics.ObserveConfirmation(true)
	s.logger.Info("booking confirmed", "session_id", id)
	return sess, nil
}

func (s *Service) update(ctx context.Context, id, action string, fn func(*Session) error) (Session, error) {
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	s.observe(action, err)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func requireStep(sess *Session, step booking.Step) error {
	if sess.State.Step != step {
		return ErrWrongStep
	}
	return nil
}

func (s *Service) observe(action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsRejection(err):
		outcome = "rejected"
	default:
		outcome = "error"
		s.logger.Error("wizard action failed", "action", action, "error", err)
	}
	s.metrics.ObserveAction(action, outcome)
}

// IsRejection reports whether err is a user-correctable refusal rather than
// a failure.
func IsRejection(err error) bool {
	var pre *booking.PreconditionError
	if errors.As(err, &pre) {
		return true
	}
	for _, target := range []error{
		ErrSessionNotFound,
		ErrUnknownService,
		ErrUnknownStaff,
		ErrStaffNotEligible,
		ErrDateNotSelectable,
		ErrUnknownSlot,
		ErrSlotUnavailable,
		ErrInvalidMonthOffset,
		ErrWrongStep,
		booking.ErrUnknownField,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// withService selects svc and clears a specific professional who cannot
// perform it.
func withService(state booking.State, svc catalog.Service) booking.State {
	patch := booking.Patch{Service: &svc}
	if staffID, ok := state.Staff.StaffID(); ok {
		if member, found := catalog.StaffByID(staffID); !found || !member.CanPerform(svc.ID) {
			unset := booking.StaffChoice{}
			patch.Staff = &unset
		}
	}
	return booking.Apply(state, patch)
}
