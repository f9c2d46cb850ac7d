package wizard

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
)

// AnyStaffName labels the "Any Available" staff option and the summary line
// used when no specific professional was chosen.
const (
	AnyStaffName     = "Any Available"
	AnyStaffRole     = "Maximum availability"
	AnyStaffSummary  = "Any Available Professional"
	CancellationNote = "Cancellations must be made 24 hours in advance."
)

// ViewContext is the wizard-local state a view needs beyond the aggregate.
type ViewContext struct {
	Today          calendar.Date
	Month          calendar.Month
	Query          string
	Pending        bool
	Recommendation *recommend.Recommendation
}

// View is the screen model for the current step. Exactly one of the step
// sections is set; an unrecognised step yields the zero View.
type View struct {
	Step         string            `json:"step,omitempty"`
	Progress     []ProgressItem    `json:"progress,omitempty"`
	Service      *ServiceView      `json:"service,omitempty"`
	Staff        *StaffView        `json:"staff,omitempty"`
	DateTime     *DateTimeView     `json:"datetime,omitempty"`
	Details      *DetailsView      `json:"details,omitempty"`
	Confirmation *ConfirmationView `json:"confirmation,omitempty"`
	CanContinue  bool              `json:"can_continue"`
	CanGoBack    bool              `json:"can_go_back"`
}

type ProgressItem struct {
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

type ServiceView struct {
	Categories   []CategoryView `json:"categories"`
	SelectedID   string         `json:"selected_id,omitempty"`
	Recommended  string         `json:"recommended_id,omitempty"`
	Reasoning    string         `json:"reasoning,omitempty"`
	Query        string         `json:"query,omitempty"`
	Pending      bool           `json:"pending"`
	CanRecommend bool           `json:"can_recommend"`
}

type CategoryView struct {
	Name     string          `json:"name"`
	Services []ServiceOption `json:"services"`
}

type ServiceOption struct {
	catalog.Service
	Selected    bool `json:"selected"`
	Recommended bool `json:"recommended"`
}

type StaffView struct {
	ServiceName string        `json:"service_name,omitempty"`
	Options     []StaffOption `json:"options"`
}

// StaffOption is one selectable card. The "Any Available" option has
// Any set and the id AnyStaffID.
type StaffOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Any       bool   `json:"any"`
	Selected  bool   `json:"selected"`
}

type DateTimeView struct {
	Title        string         `json:"title"`
	Month        calendar.Month `json:"month"`
	Weekdays     []string       `json:"weekdays"`
	Cells        []DayCell      `json:"cells"`
	Slots        []SlotOption   `json:"slots"`
	SelectedDate string         `json:"selected_date,omitempty"`
	SelectedSlot string         `json:"selected_slot,omitempty"`
}

type DayCell struct {
	calendar.Cell
	Selected bool `json:"selected"`
}

type SlotOption struct {
	calendar.TimeSlot
	Selected bool `json:"selected"`
}

type DetailsView struct {
	Fields  []FieldView `json:"fields"`
	Missing []string    `json:"missing,omitempty"`
	Notice  string      `json:"notice"`
}

type FieldView struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	Multiline   bool   `json:"multiline,omitempty"`
}

type ConfirmationView struct {
	ServiceName  string          `json:"service_name"`
	DurationMin  int             `json:"duration_min"`
	Price        decimal.Decimal `json:"price"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Professional string          `json:"professional"`
	CustomerName string          `json:"customer_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Notes        string          `json:"notes,omitempty"`
}

// Progress describes the step indicator: every stage, the current one
// active and the earlier ones completed.
func Progress(step booking.Step) []ProgressItem {
	steps := booking.Steps()
	items := make([]ProgressItem, 0, len(steps))
	for _, st := range steps {
		items = append(items, ProgressItem{
			Label:     st.Label(),
			Active:    st == step,
			Completed: step.Valid() && st.Index() < step.Index(),
		})
	}
	return items
}

// Render builds the view for the aggregate's current step.
func Render(s booking.State, vc ViewContext) View {
	v := View{
		Step:        s.Step.String(),
		Progress:    Progress(s.Step),
		CanContinue: booking.CanAdvance(s),
		CanGoBack:   s.Step != booking.FirstStep,
	}
	switch s.Step {
	case booking.StepService:
		v.Service = renderService(s, vc)
	case booking.StepStaff:
		v.Staff = renderStaff(s)
		v.CanContinue = true
	case booking.StepDateTime:
		v.DateTime = renderDateTime(s, vc)
	case booking.StepDetails:
		v.Details = renderDetails(s)
	case booking.StepConfirmation:
		v.Confirmation = renderConfirmation(s)
	default:
		return View{}
	}
	return v
}

// View renders sess as of the service's clock.
func (s *Service) View(sess Session) View {
	return Render(sess.State, ViewContext{
		Today:          s.Today(),
		Month:          sess.ViewMonth,
		Query:          sess.Query,
		Pending:        sess.Pending,
		Recommendation: sess.Recommendation,
	})
}

func renderService(s booking.State, vc ViewContext) *ServiceView {
	view := &ServiceView{
		Query:        vc.Query,
		Pending:      vc.Pending,
		CanRecommend: !vc.Pending && strings.TrimSpace(vc.Query) != "",
	}
	if s.Service != nil {
		view.SelectedID = s.Service.ID
	}
	if vc.Recommendation != nil {
		view.Recommended = vc.Recommendation.ServiceID
		view.Reasoning = vc.Recommendation.Reasoning
	}
	for _, cat := range catalog.Categories() {
		cv := CategoryView{Name: cat.Name, Services: make([]ServiceOption, 0, len(cat.Services))}
		for _, item := range cat.Services {
			cv.Services = append(cv.Services, ServiceOption{
				Service:     item,
				Selected:    item.ID == view.SelectedID,
				Recommended: view.Recommended != "" && item.ID == view.Recommended,
			})
		}
		view.Categories = append(view.Categories, cv)
	}
	return view
}

func renderStaff(s booking.State) *StaffView {
	view := &StaffView{}
	options := []StaffOption{{
		ID:       AnyStaffID,
		Name:     AnyStaffName,
		Role:     AnyStaffRole,
		Any:      true,
		Selected: s.Staff.IsAny(),
	}}
	if s.Service != nil {
		view.ServiceName = s.Service.Name
		selected, _ := s.Staff.StaffID()
		for _, member := range catalog.EligibleStaff(s.Service.ID) {
			options = append(options, StaffOption{
				ID:        member.ID,
				Name:      member.Name,
				Role:      member.Role,
				AvatarURL: member.AvatarURL,
				Selected:  member.ID == selected,
			})
		}
	}
	view.Options = options
	return view
}

func renderDateTime(s booking.State, vc ViewContext) *DateTimeView {
	month := vc.Month
	if month.Year == 0 || !month.Valid() {
		month = calendar.MonthOf(vc.Today)
	}
	view := &DateTimeView{
		Title:    month.Title(),
		Month:    month,
		Weekdays: calendar.WeekdayLabels,
	}
	for _, cell := range calendar.Cells(month, vc.Today) {
		view.Cells = append(view.Cells, DayCell{
			Cell:     cell,
			Selected: !cell.Blank && s.Date != nil && cell.Date == *s.Date,
		})
	}
	if s.Date != nil {
		view.SelectedDate = s.Date.String()
	}
	if s.TimeSlot != nil {
		view.SelectedSlot = s.TimeSlot.ID
	}
	for _, slot := range calendar.Slots() {
		view.Slots = append(view.Slots, SlotOption{
			TimeSlot: slot,
			Selected: slot.ID == view.SelectedSlot,
		})
	}
	return view
}

func renderDetails(s booking.State) *DetailsView {
	c := s.Customer
	return &DetailsView{
		Fields: []FieldView{
			{Name: booking.FieldName, Label: "Full Name", Value: c.Name, Placeholder: "Jane Doe", Required: true},
			{Name: booking.FieldEmail, Label: "Email Address", Value: c.Email, Placeholder: "jane@example.com", Required: true},
			{Name: booking.FieldPhone, Label: "Phone Number", Value: c.Phone, Placeholder: "+1 (555) 000-0000", Required: true},
			{Name: booking.FieldNotes, Label: "Additional Notes (Optional)", Value: c.Notes, Placeholder: "Any specific focus areas or allergies?", Multiline: true},
		},
		Missing: c.Missing(),
		Notice:  CancellationNote,
	}
}

func renderConfirmation(s booking.State) *ConfirmationView {
	view := &ConfirmationView{
		Professional: AnyStaffSummary,
		CustomerName: s.Customer.Name,
		Email:        s.Customer.Email,
		Phone:        s.Customer.Phone,
		Notes:        s.Customer.Notes,
	}
	if s.Service != nil {
		view.ServiceName = s.Service.Name
		view.DurationMin = s.Service.DurationMin
		view.Price = s.Service.Price
	}
	if s.Date != nil {
		view.Date = s.Date.Long()
	}
	if s.TimeSlot != nil {
		view.Time = s.TimeSlot.Label
	}
	if id, ok := s.Staff.StaffID(); ok {
		if member, found := catalog.StaffByID(id); found {
			view.Professional = member.Name
		}
	}
	return view
}
