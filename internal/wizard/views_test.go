package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/lumiere-booking/internal/booking"
	"github.com/wolfman30/lumiere-booking/internal/calendar"
	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
)

var viewToday = calendar.NewDate(2026, time.October, 15)

func viewContext() ViewContext {
	return ViewContext{Today: viewToday, Month: calendar.MonthOf(viewToday)}
}

func TestProgress(t *testing.T) {
	items := Progress(booking.StepDateTime)
	require.Len(t, items, 5)

	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	assert.Equal(t, []string{"Service", "Professional", "Time", "Details", "Review"}, labels)
	assert.True(t, items[0].Completed)
	assert.True(t, items[1].Completed)
	assert.True(t, items[2].Active)
	assert.False(t, items[2].Completed)
	assert.False(t, items[3].Completed)
}

func TestRender_UnknownStepIsEmpty(t *testing.T) {
	s := booking.Initial()
	s.Step = booking.Step(42)
	assert.Equal(t, View{}, Render(s, viewContext()))
}

func TestRender_ServiceStep(t *testing.T) {
	svc, _ := catalog.ServiceByID("s2")
	s := booking.Initial()
	s.Service = &svc
	vc := viewContext()
	vc.Recommendation = &recommend.Recommendation{ServiceID: "s5", Reasoning: "gentler"}
	vc.Query = "relax"

	v := Render(s, vc)
	require.NotNil(t, v.Service)
	assert.Equal(t, "service", v.Step)
	assert.True(t, v.CanContinue)
	assert.False(t, v.CanGoBack)
	assert.Equal(t, "s2", v.Service.SelectedID)
	assert.Equal(t, "s5", v.Service.Recommended)
	assert.Equal(t, "gentler", v.Service.Reasoning)
	assert.True(t, v.Service.CanRecommend)

	var names []string
	for _, cat := range v.Service.Categories {
		names = append(names, cat.Name)
		for _, opt := range cat.Services {
			assert.Equal(t, opt.ID == "s2", opt.Selected, opt.ID)
			assert.Equal(t, opt.ID == "s5", opt.Recommended, opt.ID)
		}
	}
	assert.Equal(t, []string{"General", "Therapy", "Medical", "Performance"}, names)
}

func TestRender_ServiceStepAskDisabled(t *testing.T) {
	vc := viewContext()
	v := Render(booking.Initial(), vc)
	assert.False(t, v.CanContinue)
	assert.False(t, v.Service.CanRecommend, "blank query")

	vc.Query = "massage"
	vc.Pending = true
	v = Render(booking.Initial(), vc)
	assert.True(t, v.Service.Pending)
	assert.False(t, v.Service.CanRecommend, "request in flight")
}

func TestRender_StaffStep(t *testing.T) {
	svc, _ := catalog.ServiceByID("s1")
	s := booking.Initial()
	s.Step = booking.StepStaff
	s.Service = &svc
	s.Staff = booking.SpecificStaff("st3")

	v := Render(s, viewContext())
	require.NotNil(t, v.Staff)
	assert.True(t, v.CanContinue)
	require.Len(t, v.Staff.Options, 3)
	assert.True(t, v.Staff.Options[0].Any)
	assert.Equal(t, AnyStaffName, v.Staff.Options[0].Name)
	assert.False(t, v.Staff.Options[0].Selected)
	assert.Equal(t, "st1", v.Staff.Options[1].ID)
	assert.Equal(t, "st3", v.Staff.Options[2].ID)
	assert.True(t, v.Staff.Options[2].Selected)
}

func TestRender_StaffStepAnyOptionAlwaysPresent(t *testing.T) {
	s := booking.Initial()
	s.Step = booking.StepStaff
	s.Staff = booking.AnyStaff()

	v := Render(s, viewContext())
	require.Len(t, v.Staff.Options, 1)
	assert.True(t, v.Staff.Options[0].Selected)
}

func TestRender_DateTimeStep(t *testing.T) {
	date := calendar.NewDate(2026, time.October, 20)
	slot, _ := calendar.SlotByID("10:00")
	s := booking.Initial()
	s.Step = booking.StepDateTime
	s.Date = &date

	v := Render(s, viewContext())
	require.NotNil(t, v.DateTime)
	assert.False(t, v.CanContinue, "slot still missing")
	assert.Equal(t, "October 2026", v.DateTime.Title)
	assert.Equal(t, []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}, v.DateTime.Weekdays)
	require.Len(t, v.DateTime.Cells, 4+31)

	var selected []calendar.Date
	for _, cell := range v.DateTime.Cells {
		if cell.Selected {
			selected = append(selected, cell.Date)
		}
	}
	assert.Equal(t, []calendar.Date{date}, selected)
	assert.Len(t, v.DateTime.Slots, 15)

	s.TimeSlot = &slot
	v = Render(s, viewContext())
	assert.True(t, v.CanContinue)
	assert.Equal(t, "10:00", v.DateTime.SelectedSlot)
	assert.Equal(t, "2026-10-20", v.DateTime.SelectedDate)
}

func TestRender_DetailsStep(t *testing.T) {
	s := booking.Initial()
	s.Step = booking.StepDetails
	s.Customer = booking.CustomerDetails{Name: "Jane Doe"}

	v := Render(s, viewContext())
	require.NotNil(t, v.Details)
	assert.False(t, v.CanContinue)
	assert.Equal(t, []string{booking.FieldEmail, booking.FieldPhone}, v.Details.Missing)
	require.Len(t, v.Details.Fields, 4)
	assert.Equal(t, "Jane Doe", v.Details.Fields[0].Value)
	assert.False(t, v.Details.Fields[3].Required)
	assert.Equal(t, CancellationNote, v.Details.Notice)
}

func TestRender_ConfirmationStep(t *testing.T) {
	svc, _ := catalog.ServiceByID("s2")
	slot, _ := calendar.SlotByID("10:00")
	date := calendar.NewDate(2026, time.October, 19)
	s := booking.State{
		Step:     booking.StepConfirmation,
		Service:  &svc,
		Staff:    booking.AnyStaff(),
		Date:     &date,
		TimeSlot: &slot,
		Customer: booking.CustomerDetails{Name: "Jane Doe", Email: "jane@example.com", Phone: "+15550000000"},
	}

	v := Render(s, viewContext())
	require.NotNil(t, v.Confirmation)
	assert.Equal(t, "Deep Tissue Massage", v.Confirmation.ServiceName)
	assert.Equal(t, 60, v.Confirmation.DurationMin)
	assert.Equal(t, "90", v.Confirmation.Price.String())
	assert.Equal(t, "Monday, October 19, 2026", v.Confirmation.Date)
	assert.Equal(t, "10:00", v.Confirmation.Time)
	assert.Equal(t, AnyStaffSummary, v.Confirmation.Professional)
	assert.Equal(t, "jane@example.com", v.Confirmation.Email)

	s.Staff = booking.SpecificStaff("st2")
	v = Render(s, viewContext())
	assert.Equal(t, "Marcus Thorne", v.Confirmation.Professional)
}
