package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Service is a bookable treatment offered by the center.
type Service struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

// Staff is a professional who performs the services listed in Specialties.
type Staff struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	AvatarURL   string   `json:"avatar_url"`
	Specialties []string `json:"specialties"`
}

// CanPerform reports whether serviceID is one of the staff member's specialties.
func (s Staff) CanPerform(serviceID string) bool {
	return slices.Contains(s.Specialties, serviceID)
}

// Category groups services for display.
type Category struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// Services returns every service in catalog order.
func Services() []Service {
	return slices.Clone(services)
}

// ServiceByID looks up a service by identifier.
func ServiceByID(id string) (Service, bool) {
	for _, svc := range services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// Categories groups the catalog by category. Categories appear in order of
// their first service; services keep catalog order within a category.
func Categories() []Category {
	var out []Category
	index := make(map[string]int)
	for _, svc := range services {
		i, ok := index[svc.Category]
		if !ok {
			i = len(out)
			index[svc.Category] = i
			out = append(out, Category{Name: svc.Category})
		}
		out[i].Services = append(out[i].Services, svc)
	}
	return out
}

// AllStaff returns every staff member in catalog order.
func AllStaff() []Staff {
	out := make([]Staff, 0, len(staff))
	for _, member := range staff {
		member.Specialties = slices.Clone(member.Specialties)
		out = append(out, member)
	}
	return out
}

// StaffByID looks up a staff member by identifier.
func StaffByID(id string) (Staff, bool) {
	for _, member := range staff {
		if member.ID == id {
			member.Specialties = slices.Clone(member.Specialties)
			return member, true
		}
	}
	return Staff{}, false
}

// EligibleStaff returns the staff able to perform serviceID, in catalog order.
// The result is empty, never nil, when nobody qualifies.
func EligibleStaff(serviceID string) []Staff {
	out := make([]Staff, 0, len(staff))
	for _, member := range AllStaff() {
		if member.CanPerform(serviceID) {
			out = append(out, member)
		}
	}
	return out
}
