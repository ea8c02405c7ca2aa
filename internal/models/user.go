package models

// Role is the access role of a platform user.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleUser         Role = "USUARIO"
	RoleCollaborator Role = "COLABORADOR"
)

// User is the authenticated platform user together with its session token.
type User struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Points       int           `json:"points"`
	Address      string        `json:"address,omitempty"`
	Role         Role          `json:"role"`
	Collaborator *Collaborator `json:"collaborator,omitempty"`
	Token        string        `json:"token,omitempty"`
}

// CollaboratorID returns the collaborator identity, or "" when the user has none.
func (u *User) CollaboratorID() string {
	if u == nil || u.Collaborator == nil {
		return ""
	}

	return u.Collaborator.ID
}

// IsCollaborator reports whether the user may operate green points and confirm exchanges.
func (u *User) IsCollaborator() bool {
	return u != nil && u.Role == RoleCollaborator
}

// Collaborator holds the fiscal data of a user operating green points.
type Collaborator struct {
	ID            string `json:"id"`
	CVU           string `json:"cvu,omitempty"`
	FiscalAddress string `json:"fiscalAddress,omitempty"`
	CUIT          string `json:"cuit,omitempty"`
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
