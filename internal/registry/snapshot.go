package registry

import (
	"slices"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// Snapshot is an immutable view of the registry at one load. The zero value is empty.
type Snapshot struct {
	points   []models.GreenPoint
	loadedAt time.Time
}

func newSnapshot(points []models.GreenPoint, loadedAt time.Time) *Snapshot {
	cloned := make([]models.GreenPoint, len(points))
	for i, p := range points {
		p.AcceptedMaterials = slices.Clone(p.AcceptedMaterials)
		cloned[i] = p
	}

	return &Snapshot{points: cloned, loadedAt: loadedAt}
}

// Len returns the number of points.
func (s *Snapshot) Len() int {
	return len(s.points)
}

// Empty reports whether the snapshot holds no points, e.g. before the first load.
func (s *Snapshot) Empty() bool {
	return len(s.points) == 0
}

// LoadedAt returns when the snapshot was fetched; zero before the first load.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Points returns a copy of the points in backend order.
func (s *Snapshot) Points() []models.GreenPoint {
	out := make([]models.GreenPoint, len(s.points))
	for i, p := range s.points {
		p.AcceptedMaterials = slices.Clone(p.AcceptedMaterials)
		out[i] = p
	}

	return out
}

// IDs returns point identifiers in backend order.
func (s *Snapshot) IDs() []string {
	ids := make([]string, 0, len(s.points))
	for _, p := range s.points {
		ids = append(ids, p.ID)
	}

	return ids
}

// OwnedBy returns the points operated by collaboratorID, in backend order.
func (s *Snapshot) OwnedBy(collaboratorID string) []models.GreenPoint {
	var owned []models.GreenPoint
	for _, p := range s.points {
		if p.OwnerCollaboratorID == collaboratorID {
			p.AcceptedMaterials = slices.Clone(p.AcceptedMaterials)
			owned = append(owned, p)
		}
	}

	return owned
}

// Get looks a point up by id.
func (s *Snapshot) Get(id string) (models.GreenPoint, bool) {
	for _, p := range s.points {
		if p.ID == id {
			p.AcceptedMaterials = slices.Clone(p.AcceptedMaterials)
			return p, true
		}
	}

	return models.GreenPoint{}, false
}
