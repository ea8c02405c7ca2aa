package models

// GreenPoint is a physical drop-off location accepting specific recyclable materials,
// operated by a single collaborator. The backend owns it; clients hold read-only copies.
type GreenPoint struct {
	ID                  string      `json:"id"`
	Location            Coordinates `json:"location"`
	Address             string      `json:"address"`
	Name                string      `json:"name"`
	Description         string      `json:"description,omitempty"`
	OpeningHours        string      `json:"openingHours,omitempty"`
	ImageURL            string      `json:"imageUrl,omitempty"`
	AcceptedMaterials   []string    `json:"acceptedMaterials"`
	OwnerCollaboratorID string      `json:"ownerCollaboratorId"`
	IsDeleted           bool        `json:"isDeleted"`
}

// Accepts reports whether the point takes the given material.
func (g GreenPoint) Accepts(material string) bool {
	for _, m := range g.AcceptedMaterials {
		if m == material {
			return true
		}
	}

	return false
}

// GreenPointDraft holds the fields a collaborator submits when creating a point.
// Location is optional: when nil the address is geocoded before submission.
type GreenPointDraft struct {
	Name              string
	Description       string
	Address           string
	OpeningHours      string
	Location          *Coordinates
	AcceptedMaterials []string
	Image             *Upload
}

// GreenPointPatch holds the only fields the backend allows to change on an existing point.
type GreenPointPatch struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	OpeningHours string `json:"openingHours,omitempty"`
}

// Upload is a file attached to a multipart request.
type Upload struct {
	Filename string
	Content  []byte
}
