package attendance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"classmark/internal/geo"
	"classmark/internal/location"
	"classmark/internal/roster"
	"classmark/internal/schedule"
)

// RosterLookup resolves a scanned id against the registered student list.
type RosterLookup interface {
	Find(ctx context.Context, id string) (*roster.Student, error)
}

// Recorder appends marks. Insert must be atomic insert-if-absent and
// return ErrDuplicateMark when the (day, slot, student) row already exists.
type Recorder interface {
	Insert(ctx context.Context, rec Record) error
}

// Confirmation is returned on a successful mark.
type Confirmation struct {
	Name      string
	SlotLabel string
}

// Service validates and records attendance marks. Gates run in a fixed
// order; the first failing gate determines the rejection reason.
type Service struct {
	roster RosterLookup
	marks  Recorder
	slots  *schedule.Policy
	zone   location.Source // nil disables geofencing
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a service. Pass a nil zone source to disable the
// geofence gate.
func NewService(rs RosterLookup, marks Recorder, slots *schedule.Policy, zone location.Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		roster: rs,
		marks:  marks,
		slots:  slots,
		zone:   zone,
		logger: logger,
		now:    time.Now,
	}
}

// Mark validates and appends one attendance record for studentID.
// clientLoc may be nil; it is required only when geofencing is enabled.
// Retrying a mark that already landed yields ErrDuplicateMark and never a
// second row.
func (s *Service) Mark(ctx context.Context, studentID string, clientLoc *geo.Point) (Confirmation, error) {
	now := s.now()

	slot, ok := s.slots.AdmittedSlot(now)
	if !ok {
		return Confirmation{}, ErrOutsideTimeWindow
	}

	if s.zone != nil {
		if clientLoc == nil || !clientLoc.Valid() {
			return Confirmation{}, ErrLocationRequired
		}
		// The zone source re-reads its backing file every call, so a
		// relocated classroom takes effect without a restart.
		zone, err := s.zone.Current(ctx)
		if err != nil {
			s.logger.Error("classroom zone unavailable", zap.Error(err))
			return Confirmation{}, errors.Join(ErrStorageUnavailable, err)
		}
		if dist := geo.DistanceMeters(zone.Center, *clientLoc); dist > zone.RadiusMeters {
			s.logger.Info("mark rejected outside geofence",
				zap.String("student_id", studentID),
				zap.Float64("distance_m", dist),
				zap.Float64("radius_m", zone.RadiusMeters))
			return Confirmation{}, ErrOutsideGeofence
		}
	}

	student, err := s.roster.Find(ctx, studentID)
	if err != nil {
		s.logger.Error("roster lookup failed", zap.Error(err))
		return Confirmation{}, errors.Join(ErrStorageUnavailable, err)
	}
	if student == nil {
		return Confirmation{}, ErrUnknownStudent
	}

	rec := Record{
		Day:       DayOf(now),
		SlotLabel: slot.Label,
		StudentID: student.ID,
		Name:      student.Name,
		MarkedAt:  now,
	}
	if err := s.marks.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateMark) {
			return Confirmation{}, ErrDuplicateMark
		}
		s.logger.Error("mark insert failed", zap.Error(err))
		return Confirmation{}, errors.Join(ErrStorageUnavailable, err)
	}

	s.logger.Info("attendance marked",
		zap.String("student_id", student.ID),
		zap.String("slot", slot.Label),
		zap.String("day", rec.Day))
	return Confirmation{Name: student.Name, SlotLabel: slot.Label}, nil
}
