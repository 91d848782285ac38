package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Slot is a named clock-time interval during which attendance may be marked.
// Bounds are inclusive at both ends and compared at minute resolution.
type Slot struct {
	Label string
	Start int // minutes since midnight
	End   int
}

// Policy holds an ordered list of non-overlapping slots.
type Policy struct {
	slots []Slot
}

// Parse builds a policy from a spec like "09:00-09:15,10:00-10:15".
// Slots are labeled "Slot 1", "Slot 2", ... by position. Overlapping or
// inverted slots are rejected: first-match lookup would silently hide
// later slots otherwise.
func Parse(spec string) (*Policy, error) {
	parts := strings.Split(spec, ",")
	slots := make([]Slot, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("slot %q: want HH:MM-HH:MM", part)
		}
		start, err := parseMinute(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", part, err)
		}
		end, err := parseMinute(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", part, err)
		}
		if end < start {
			return nil, fmt.Errorf("slot %q: end before start", part)
		}
		slots = append(slots, Slot{
			Label: fmt.Sprintf("Slot %d", i+1),
			Start: start,
			End:   end,
		})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots configured")
	}
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].Start <= slots[j].End && slots[j].Start <= slots[i].End {
				return nil, fmt.Errorf("slots %s and %s overlap", slots[i].Label, slots[j].Label)
			}
		}
	}
	return &Policy{slots: slots}, nil
}

// AdmittedSlot returns the first slot whose inclusive bounds contain t,
// truncated to minute resolution. Admission is time-dependent, so callers
// must re-evaluate on every request rather than cache the result.
func (p *Policy) AdmittedSlot(t time.Time) (Slot, bool) {
	minute := t.Hour()*60 + t.Minute()
	for _, s := range p.slots {
		if s.Start <= minute && minute <= s.End {
			return s, true
		}
	}
	return Slot{}, false
}

// Slots returns the configured slots in order.
func (p *Policy) Slots() []Slot {
	out := make([]Slot, len(p.slots))
	copy(out, p.slots)
	return out
}

func parseMinute(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
