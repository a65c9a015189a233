package types

import "time"

type UserRole string

const (
	UserRoleNGO   UserRole = "NGO"
	UserRoleDonor UserRole = "Donor"
)

func (r UserRole) Valid() bool {
	return r == UserRoleNGO || r == UserRoleDonor
}

type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        UserRole  `json:"role"`
	Bio         string    `json:"bio"`
	ImpactScore int       `json:"impactScore"`
	Badges      []string  `json:"badges"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Credential struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}
