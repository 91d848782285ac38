package location

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"classmark/internal/geo"
)

// DefaultRadiusMeters applies when the zone file omits a radius.
const DefaultRadiusMeters = 50

// Zone is the circular region inside which marking is permitted.
type Zone struct {
	Center       geo.Point
	RadiusMeters float64
}

// Contains reports whether p falls within the zone.
func (z Zone) Contains(p geo.Point) bool {
	return geo.DistanceMeters(z.Center, p) <= z.RadiusMeters
}

// Source yields the currently configured classroom zone.
type Source interface {
	Current(ctx context.Context) (Zone, error)
}

// FileSource reads the zone from a JSON file on every call, so operators
// can relocate the permitted area by editing the file, without a restart.
type FileSource struct {
	Path string
}

// NewFileSource returns a source backed by the given file path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

type zoneFile struct {
	ClassroomLocation struct {
		Latitude     float64  `json:"latitude"`
		Longitude    float64  `json:"longitude"`
		RadiusMeters *float64 `json:"radiusMeters"`
	} `json:"classroomLocation"`
}

// Current loads and validates the zone file.
func (s *FileSource) Current(ctx context.Context) (Zone, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Zone{}, fmt.Errorf("read location file: %w", err)
	}
	var f zoneFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Zone{}, fmt.Errorf("parse location file: %w", err)
	}
	z := Zone{
		Center: geo.Point{
			Latitude:  f.ClassroomLocation.Latitude,
			Longitude: f.ClassroomLocation.Longitude,
		},
		RadiusMeters: DefaultRadiusMeters,
	}
	if f.ClassroomLocation.RadiusMeters != nil {
		z.RadiusMeters = *f.ClassroomLocation.RadiusMeters
	}
	if !z.Center.Valid() {
		return Zone{}, fmt.Errorf("location file %s: invalid coordinates", s.Path)
	}
	if z.RadiusMeters <= 0 {
		return Zone{}, fmt.Errorf("location file %s: radius must be positive", s.Path)
	}
	return z, nil
}

// Static is a fixed zone source, handy for tests and single-room deployments.
type Static struct {
	Zone Zone
}

// Current returns the fixed zone.
func (s Static) Current(ctx context.Context) (Zone, error) {
	return s.Zone, nil
}
