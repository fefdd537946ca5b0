package calendar

import (
	"daystack/internal/domain"
	"log"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerDay caps runaway rules such as FREQ=SECONDLY.
const maxOccurrencesPerDay = 500

// expandDay turns parsed VEVENTs into the fixed events of [dayStart, dayEnd).
// All-day events are dropped; they do not occupy a place in the timeline.
func expandDay(events []vevent, dayStart, dayEnd time.Time) []domain.FixedEvent {
	overrides := make(map[string][]vevent)
	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	out := make([]domain.FixedEvent, 0, len(events))
	for _, ev := range events {
		if ev.Recurrence != nil {
			continue
		}
		if ev.AllDay {
			continue
		}

		if ev.RawRRule == "" {
			if fe, ok := clip(ev, ev.UID, ev.Start, ev.End, dayStart, dayEnd); ok {
				out = append(out, fe)
			}
			continue
		}

		out = append(out, expandRecurring(ev, overrides[ev.UID], dayStart, dayEnd)...)
	}

	// Overrides whose series is not in the payload still stand on their own.
	for uid, ovs := range overrides {
		if hasBase(events, uid) {
			continue
		}
		for _, ov := range ovs {
			if fe, ok := clip(ov, occurrenceID(uid, *ov.Recurrence), ov.Start, ov.End, dayStart, dayEnd); ok {
				out = append(out, fe)
			}
		}
	}

	return out
}

func expandRecurring(ev vevent, overrides []vevent, dayStart, dayEnd time.Time) []domain.FixedEvent {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		log.Printf("expand ics: bad rrule uid=%q rrule=%q err=%v", ev.UID, ev.RawRRule, err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	length := time.Duration(0)
	if ev.HasEnd {
		length = ev.End.Sub(ev.Start)
	}

	// Occurrences that began the previous evening may still reach into the day.
	from := dayStart.Add(-length).In(ev.Start.Location())
	to := dayEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)
	if len(starts) > maxOccurrencesPerDay {
		log.Printf("expand ics: truncated uid=%q occurrences=%d cap=%d", ev.UID, len(starts), maxOccurrencesPerDay)
		starts = starts[:maxOccurrencesPerDay]
	}

	out := make([]domain.FixedEvent, 0, len(starts))
	for _, s := range starts {
		occ := ev
		occ.Start = s
		occ.End = s.Add(length)

		for _, ov := range overrides {
			if ov.Recurrence.Equal(s) {
				occ = ov
				break
			}
		}

		if fe, ok := clip(occ, occurrenceID(ev.UID, s), occ.Start, occ.End, dayStart, dayEnd); ok {
			out = append(out, fe)
		}
	}
	return out
}

// clip maps one occurrence onto the day. An occurrence that started before
// the day keeps only its end; one that runs past the day keeps only its start.
func clip(ev vevent, id string, start, end, dayStart, dayEnd time.Time) (domain.FixedEvent, bool) {
	if !ev.HasEnd {
		if start.Before(dayStart) || !start.Before(dayEnd) {
			return domain.FixedEvent{}, false
		}
		s := start
		return domain.FixedEvent{ID: id, Name: ev.Summary, Start: &s, Location: ev.Location}, true
	}

	if !end.After(dayStart) || !start.Before(dayEnd) {
		return domain.FixedEvent{}, false
	}

	fe := domain.FixedEvent{ID: id, Name: ev.Summary, Location: ev.Location}
	if !start.Before(dayStart) {
		s := start
		fe.Start = &s
	}
	if !end.After(dayEnd) {
		e := end
		fe.End = &e
	}
	if fe.Start == nil && fe.End == nil {
		// Spans the whole day: nothing can be planned around it.
		s, e := dayStart, dayEnd
		fe.Start, fe.End = &s, &e
	}
	return fe, true
}

func occurrenceID(uid string, start time.Time) string {
	return uid + "@" + start.UTC().Format("20060102T150405Z")
}

func hasBase(events []vevent, uid string) bool {
	for _, ev := range events {
		if ev.UID == uid && ev.Recurrence == nil {
			return true
		}
	}
	return false
}
