package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classmark/internal/geo"
	"classmark/internal/location"
	"classmark/internal/roster"
	"classmark/internal/schedule"
)

type fakeRoster struct {
	students map[string]roster.Student
	err      error
}

func (f *fakeRoster) Find(ctx context.Context, id string) (*roster.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	st, ok := f.students[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

type fakeRecorder struct {
	inserted []Record
	err      error
}

func (f *fakeRecorder) Insert(ctx context.Context, rec Record) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.inserted {
		if existing.Day == rec.Day && existing.SlotLabel == rec.SlotLabel && existing.StudentID == rec.StudentID {
			return ErrDuplicateMark
		}
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

var classroom = location.Static{Zone: location.Zone{
	Center:       geo.Point{Latitude: 28.7041, Longitude: 77.1025},
	RadiusMeters: 50,
}}

func newTestService(t *testing.T, zone location.Source) (*Service, *fakeRecorder) {
	t.Helper()
	slots, err := schedule.Parse("09:00-09:15,10:00-10:15,11:15-11:30,12:15-12:30,14:00-16:00")
	require.NoError(t, err)

	marks := &fakeRecorder{}
	svc := NewService(&fakeRoster{students: map[string]roster.Student{
		"S001": {ID: "S001", Name: "Anaya Patil"},
	}}, marks, slots, zone, nil)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 3, 9, 10, 0, 0, time.Local)
	}
	return svc, marks
}

func insideLoc() *geo.Point {
	return &geo.Point{Latitude: 28.7041, Longitude: 77.1025}
}

func TestMarkSuccess(t *testing.T) {
	svc, marks := newTestService(t, classroom)

	conf, err := svc.Mark(context.Background(), "S001", insideLoc())
	require.NoError(t, err)
	assert.Equal(t, "Anaya Patil", conf.Name)
	assert.Equal(t, "Slot 1", conf.SlotLabel)
	require.Len(t, marks.inserted, 1)
	assert.Equal(t, "2025-03-03", marks.inserted[0].Day)
	assert.Equal(t, "S001", marks.inserted[0].StudentID)
}

func TestMarkDuplicateIsIdempotent(t *testing.T) {
	svc, marks := newTestService(t, classroom)

	_, err := svc.Mark(context.Background(), "S001", insideLoc())
	require.NoError(t, err)

	_, err = svc.Mark(context.Background(), "S001", insideLoc())
	assert.ErrorIs(t, err, ErrDuplicateMark)
	assert.Len(t, marks.inserted, 1, "retry must never append a second row")
}

func TestMarkOutsideTimeWindow(t *testing.T) {
	svc, marks := newTestService(t, classroom)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 3, 9, 16, 0, 0, time.Local)
	}

	_, err := svc.Mark(context.Background(), "S001", insideLoc())
	assert.ErrorIs(t, err, ErrOutsideTimeWindow)
	assert.Empty(t, marks.inserted)
}

func TestMarkLocationRequired(t *testing.T) {
	svc, marks := newTestService(t, classroom)

	_, err := svc.Mark(context.Background(), "S001", nil)
	assert.ErrorIs(t, err, ErrLocationRequired)

	bad := &geo.Point{Latitude: 200, Longitude: 0}
	_, err = svc.Mark(context.Background(), "S001", bad)
	assert.ErrorIs(t, err, ErrLocationRequired)
	assert.Empty(t, marks.inserted)
}

func TestMarkOutsideGeofence(t *testing.T) {
	svc, marks := newTestService(t, classroom)

	kmAway := &geo.Point{Latitude: 28.7131, Longitude: 77.1025}
	_, err := svc.Mark(context.Background(), "S001", kmAway)
	assert.ErrorIs(t, err, ErrOutsideGeofence)
	assert.Empty(t, marks.inserted)
}

func TestMarkGeofenceDisabled(t *testing.T) {
	svc, marks := newTestService(t, nil)

	// No location needed when the deployment runs without geofencing.
	_, err := svc.Mark(context.Background(), "S001", nil)
	require.NoError(t, err)
	assert.Len(t, marks.inserted, 1)
}

func TestMarkUnknownStudent(t *testing.T) {
	svc, marks := newTestService(t, classroom)

	_, err := svc.Mark(context.Background(), "S999", insideLoc())
	assert.ErrorIs(t, err, ErrUnknownStudent)
	assert.Empty(t, marks.inserted)
}

func TestMarkStorageFailures(t *testing.T) {
	t.Run("roster lookup", func(t *testing.T) {
		svc, _ := newTestService(t, classroom)
		svc.roster = &fakeRoster{err: errors.New("connection refused")}

		_, err := svc.Mark(context.Background(), "S001", insideLoc())
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("mark insert", func(t *testing.T) {
		svc, marks := newTestService(t, classroom)
		marks.err = errors.New("connection refused")

		_, err := svc.Mark(context.Background(), "S001", insideLoc())
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("zone source", func(t *testing.T) {
		svc, _ := newTestService(t, location.NewFileSource("/nonexistent/classroom.json"))

		_, err := svc.Mark(context.Background(), "S001", insideLoc())
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}

func TestMarkGateOrder(t *testing.T) {
	// Outside the window beats everything else, even an unknown student
	// with no location.
	svc, _ := newTestService(t, classroom)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 3, 13, 0, 0, 0, time.Local)
	}
	_, err := svc.Mark(context.Background(), "S999", nil)
	assert.ErrorIs(t, err, ErrOutsideTimeWindow)

	// Geofence is checked before the roster: an unknown student a km away
	// is rejected for location first.
	svc, _ = newTestService(t, classroom)
	_, err = svc.Mark(context.Background(), "S999", &geo.Point{Latitude: 28.7131, Longitude: 77.1025})
	assert.ErrorIs(t, err, ErrOutsideGeofence)
}
