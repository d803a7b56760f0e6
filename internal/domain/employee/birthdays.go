package employee

import (
	"context"
	"sort"
	"time"
)

// upcomingWindowDays bounds the Upcoming view.
const upcomingWindowDays = 30

// BirthdayEntry is one employee in a birthday view, with the countdown to
// their next birthday already computed.
type BirthdayEntry struct {
	Employee
	DaysUntil    int       `json:"daysUntil"`
	NextBirthday time.Time `json:"nextBirthday"`
}

// NextOccurrence returns the next calendar occurrence of the birthday on or
// after today. A 29 February birthday lands on 1 March in non-leap years,
// the normalization time.Date applies.
func NextOccurrence(birthday, today time.Time) time.Time {
	today = midnightUTC(today)
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return next
}

// DaysUntil counts the whole days from today to the next occurrence of the
// birthday. Zero means the birthday is today.
func DaysUntil(birthday, today time.Time) int {
	return int(NextOccurrence(birthday, today).Sub(midnightUTC(today)).Hours() / 24)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Birthdays lists every active employee with a recorded birthday, annotated
// with their countdown.
func (s *Service) Birthdays(ctx context.Context) ([]BirthdayEntry, error) {
	return s.birthdayEntries(ctx, time.Now().UTC(), func(BirthdayEntry) bool { return true })
}

// UpcomingBirthdays lists the birthdays falling within the next 30 days,
// soonest first.
func (s *Service) UpcomingBirthdays(ctx context.Context) ([]BirthdayEntry, error) {
	entries, err := s.birthdayEntries(ctx, time.Now().UTC(), func(e BirthdayEntry) bool {
		return e.DaysUntil <= upcomingWindowDays
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysUntil < entries[j].DaysUntil
	})
	return entries, nil
}

// TodayBirthdays lists the employees whose birthday is today.
func (s *Service) TodayBirthdays(ctx context.Context) ([]BirthdayEntry, error) {
	return s.birthdayEntries(ctx, time.Now().UTC(), func(e BirthdayEntry) bool {
		return e.DaysUntil == 0
	})
}

// MonthBirthdays lists the birthdays in the given month, ordered by day of
// month.
func (s *Service) MonthBirthdays(ctx context.Context, month time.Month) ([]BirthdayEntry, error) {
	entries, err := s.birthdayEntries(ctx, time.Now().UTC(), func(e BirthdayEntry) bool {
		return e.Birthday.Month() == month
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Birthday.Day() < entries[j].Birthday.Day()
	})
	return entries, nil
}

func (s *Service) birthdayEntries(ctx context.Context, today time.Time, keep func(BirthdayEntry) bool) ([]BirthdayEntry, error) {
	employees, err := s.Store.ListWithBirthdays(ctx, s.Store.Pool)
	if err != nil {
		return nil, err
	}

	entries := make([]BirthdayEntry, 0, len(employees))
	for _, e := range employees {
		entry := BirthdayEntry{
			Employee:     e,
			DaysUntil:    DaysUntil(*e.Birthday, today),
			NextBirthday: NextOccurrence(*e.Birthday, today),
		}
		if keep(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
