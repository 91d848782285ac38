package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultSpec = "09:00-09:15,10:00-10:15,11:15-11:30,12:15-12:30,14:00-16:00"

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 30, 0, time.Local)
}

func TestAdmittedSlot(t *testing.T) {
	p, err := Parse(defaultSpec)
	require.NoError(t, err)

	cases := []struct {
		name  string
		t     time.Time
		label string
		ok    bool
	}{
		{"inside first slot", at(9, 10), "Slot 1", true},
		{"start bound inclusive", at(9, 0), "Slot 1", true},
		{"end bound inclusive", at(9, 15), "Slot 1", true},
		{"one past end", at(9, 16), "", false},
		{"between slots", at(13, 0), "", false},
		{"long afternoon slot", at(15, 59), "Slot 5", true},
		{"afternoon end", at(16, 0), "Slot 5", true},
		{"after hours", at(18, 0), "", false},
		{"before hours", at(8, 59), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot, ok := p.AdmittedSlot(tc.t)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.label, slot.Label)
		})
	}
}

func TestAdmittedSlotIgnoresSeconds(t *testing.T) {
	p, err := Parse("09:00-09:15")
	require.NoError(t, err)

	// 09:15:59 still falls inside the inclusive end bound.
	_, ok := p.AdmittedSlot(time.Date(2025, time.March, 3, 9, 15, 59, 0, time.Local))
	assert.True(t, ok)
}

func TestParseRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec string
	}{
		{"empty", ""},
		{"missing dash", "09:00"},
		{"garbage time", "9am-10am"},
		{"inverted bounds", "10:00-09:00"},
		{"overlapping slots", "09:00-10:00,09:30-11:00"},
		{"shared boundary overlaps", "09:00-10:00,10:00-11:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.spec)
			assert.Error(t, err)
		})
	}
}

func TestSlotsAreLabeledByPosition(t *testing.T) {
	p, err := Parse(defaultSpec)
	require.NoError(t, err)

	slots := p.Slots()
	require.Len(t, slots, 5)
	assert.Equal(t, "Slot 1", slots[0].Label)
	assert.Equal(t, "Slot 5", slots[4].Label)
}
