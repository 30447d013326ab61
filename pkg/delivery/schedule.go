package delivery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day in the operational timezone.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// Rule anchors the cutoff, cooking and delivery instants to a delivery date.
type Rule struct {
	CutoffDaysBefore  int
	CutoffAt          ClockTime
	CookingDaysBefore int
	CookingAt         ClockTime
	DeliveryStartAt   ClockTime
	DeliveryEndAt     ClockTime
}

// DefaultRule: cutoff two days before at 08:00, cooking the day before at
// 08:00, delivery between 10:00 and 15:00.
func DefaultRule() Rule {
	return Rule{
		CutoffDaysBefore:  2,
		CutoffAt:          ClockTime{Hour: 8},
		CookingDaysBefore: 1,
		CookingAt:         ClockTime{Hour: 8},
		DeliveryStartAt:   ClockTime{Hour: 10},
		DeliveryEndAt:     ClockTime{Hour: 15},
	}
}

// Validate checks that the windows of a rule are ordered.
func (r Rule) Validate() error {
	if r.CutoffDaysBefore < 0 || r.CookingDaysBefore < 0 {
		return fmt.Errorf("day offsets must not be negative")
	}
	ref := time.Date(2000, time.January, 10, 0, 0, 0, 0, time.UTC)
	w := r.windowsFor(ref, time.UTC)
	if w.CookingStart.Before(w.Cutoff) {
		return fmt.Errorf("cooking start %s is before the cutoff", r.CookingAt)
	}
	if w.DeliveryStart.Before(w.CookingStart) {
		return fmt.Errorf("delivery start %s is before cooking start", r.DeliveryStartAt)
	}
	if !w.DeliveryEnd.After(w.DeliveryStart) {
		return fmt.Errorf("delivery end %s must be after delivery start %s", r.DeliveryEndAt, r.DeliveryStartAt)
	}
	return nil
}

// Windows are the four instants derived from one delivery date.
type Windows struct {
	DeliveryDate  time.Time `json:"delivery_date"`
	Cutoff        time.Time `json:"cutoff"`
	CookingStart  time.Time `json:"cooking_start"`
	DeliveryStart time.Time `json:"delivery_start"`
	DeliveryEnd   time.Time `json:"delivery_end"`
}

func (r Rule) windowsFor(date time.Time, loc *time.Location) Windows {
	y, m, d := date.Date()
	at := func(daysBefore int, c ClockTime) time.Time {
		// time.Date normalises day underflow across month and year boundaries.
		return time.Date(y, m, d-daysBefore, c.Hour, c.Minute, 0, 0, loc)
	}
	return Windows{
		DeliveryDate:  time.Date(y, m, d, 0, 0, 0, 0, loc),
		Cutoff:        at(r.CutoffDaysBefore, r.CutoffAt),
		CookingStart:  at(r.CookingDaysBefore, r.CookingAt),
		DeliveryStart: at(0, r.DeliveryStartAt),
		DeliveryEnd:   at(0, r.DeliveryEndAt),
	}
}

// Schedule maps each delivery weekday to its rule. Weekdays without a rule are
// not delivery days.
type Schedule struct {
	location *time.Location
	rules    map[time.Weekday]Rule
}

func NewSchedule(loc *time.Location, rules map[time.Weekday]Rule) (*Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one delivery day must be configured")
	}
	copied := make(map[time.Weekday]Rule, len(rules))
	for day, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", day, err)
		}
		copied[day] = rule
	}
	return &Schedule{location: loc, rules: copied}, nil
}

func (s *Schedule) Location() *time.Location {
	return s.location
}

// Days returns the configured delivery weekdays, Sunday first.
func (s *Schedule) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(s.rules))
	for d := range s.rules {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (s *Schedule) IsDeliveryDay(d time.Weekday) bool {
	_, ok := s.rules[d]
	return ok
}

// Windows computes the instants for a delivery date. The year, month and day
// of deliveryDate are taken as given, whatever its location; ok is false when
// that weekday has no rule.
func (s *Schedule) Windows(deliveryDate time.Time) (Windows, bool) {
	day := CalendarDate(deliveryDate, s.location)
	rule, ok := s.rules[day.Weekday()]
	if !ok {
		return Windows{}, false
	}
	return rule.windowsFor(day, s.location), true
}

// CalendarDate strips the clock from t without converting it, then pins the
// date to loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full or three-letter English day names.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdays[key]; ok {
		return d, nil
	}
	if len(key) == 3 {
		for name, d := range weekdays {
			if strings.HasPrefix(name, key) {
				return d, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
