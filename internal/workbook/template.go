package workbook

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/roach88/rollcall/internal/roster"
)

var (
	templateFirstNames = []string{
		"John", "Jane", "Michael", "Emily", "David", "Sarah", "Chris", "Jessica", "Daniel", "Laura",
		"James", "Olivia", "Matthew", "Sophia", "Andrew", "Emma", "Joshua", "Ava", "Ryan", "Mia",
	}
	templateLastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
		"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	}
	templateEventTypes = []string{"Seminar", "Workshop", "Meeting", "Conference", "Webinar"}
)

// TemplateOptions sizes the sample workbook.
type TemplateOptions struct {
	Attendees int
	Events    int
	// Month is the first day of the month events are spread over.
	Month time.Time
	// Seed drives the randomized attendance of the last fifth of attendees.
	Seed uint64
}

// DefaultTemplateOptions returns the 100 x 100 sample used for new users.
func DefaultTemplateOptions() TemplateOptions {
	return TemplateOptions{
		Attendees: 100,
		Events:    100,
		Month:     time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		Seed:      1,
	}
}

// Template builds a sample workbook: attendees A001.., events E001.. cycling
// through five event types, and attendance rows following fixed patterns
// (full, none, 75%, 50%, 25%) with the remainder randomized from Seed.
func Template(opts TemplateOptions) *Workbook {
	wb := New()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	for i := 1; i <= opts.Attendees; i++ {
		first := templateFirstNames[(i-1)%len(templateFirstNames)]
		last := templateLastNames[(i-1)%len(templateLastNames)]
		wb.Attendees = append(wb.Attendees, roster.Attendee{
			ID:       fmt.Sprintf("A%03d", i),
			FullName: first + " " + last,
			NickName: first,
		})
	}

	for i := 1; i <= opts.Events; i++ {
		typ := templateEventTypes[(i-1)%len(templateEventTypes)]
		day := opts.Month.AddDate(0, 0, i%28)
		from := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		ev := roster.Event{
			ID:   fmt.Sprintf("E%03d", i),
			Name: fmt.Sprintf("%s %d", typ, i),
			Type: typ,
			From: from,
			To:   from.Add(time.Hour),
		}
		wb.Events = append(wb.Events, ev)
		wb.Matrix.AddColumn(ev.ID)
	}

	for i, a := range wb.Attendees {
		pattern := templatePattern(i+1, opts.Attendees, rng)
		marks := make([]roster.Mark, opts.Events)
		for j := range marks {
			if pattern(j + 1) {
				marks[j] = roster.Present
			} else {
				marks[j] = roster.Absent
			}
		}
		wb.Matrix.SetRow(a.ID, marks)
	}
	return wb
}

// templatePattern picks the attendance pattern for the i-th of n attendees.
// Bands are proportional so smaller templates keep the same mix.
func templatePattern(i, n int, rng *rand.Rand) func(j int) bool {
	band := i * 100 / n
	switch {
	case band <= 10:
		return func(int) bool { return true }
	case band <= 20:
		return func(int) bool { return false }
	case band <= 40:
		return func(j int) bool { return j%4 != 0 }
	case band <= 60:
		return func(j int) bool { return j%2 == 0 }
	case band <= 80:
		return func(j int) bool { return j%4 == 0 }
	case band <= 90:
		rate := rng.Float64()*0.8 + 0.1
		return func(int) bool { return rng.Float64() < rate }
	default:
		return func(int) bool { return rng.Float64() < 0.5 }
	}
}
