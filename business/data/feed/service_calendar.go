package feed

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// ServiceCalendar holds the holidays observed by the transit agency.
// On an observed holiday the agency runs its Sunday schedule.
type ServiceCalendar struct {
	calendar *cal.BusinessCalendar
}

// NewServiceCalendar builds a ServiceCalendar.
// TODO:: holiday set should be configurable by transit agency rather than being hardcoded as it is now.
func NewServiceCalendar() *ServiceCalendar {
	calendar := cal.NewBusinessCalendar()
	calendar.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
		us.Juneteenth,
	)
	return &ServiceCalendar{calendar: calendar}
}

// IsHoliday returns true if at falls on a holiday observed by the agency
func (s *ServiceCalendar) IsHoliday(at time.Time) bool {
	_, observed, _ := s.calendar.IsHoliday(at)
	return observed
}

// ServiceDayOf returns the weekday whose schedule runs at the given time,
// substituting Sunday on observed holidays
func (s *ServiceCalendar) ServiceDayOf(at time.Time) time.Weekday {
	if s.IsHoliday(at) {
		return time.Sunday
	}
	return at.Weekday()
}
