// Package models defines the records managed by the plaque administration
// client: staff users, plaques, the auth session and the persisted state.
package models

import "time"

// Role gates what a signed-in user may do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a staff account. Password is kept as entered.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	Nom       string    `json:"nom"`
	PostNom   string    `json:"postNom"`
	Prenom    string    `json:"prenom"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName renders "NOM POSTNOM Prenom".
func (u User) DisplayName() string {
	return joinNonEmpty(u.Nom, u.PostNom, u.Prenom)
}

// UserInput carries the caller-supplied fields of a new user.
type UserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=admin user"`
	Nom      string `json:"nom" validate:"required"`
	PostNom  string `json:"postNom" validate:"required"`
	Prenom   string `json:"prenom" validate:"required"`
}

// NewUser materialises in with the given identity.
func (in UserInput) NewUser(id string, createdAt time.Time) User {
	return User{
		ID:        id,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
		Nom:       in.Nom,
		PostNom:   in.PostNom,
		Prenom:    in.Prenom,
		CreatedAt: createdAt,
	}
}

// UserPatch is a partial update. Nil fields are left untouched; an empty
// Password is treated like a nil one so editing a user never blanks it.
type UserPatch struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Nom      *string `json:"nom,omitempty"`
	PostNom  *string `json:"postNom,omitempty"`
	Prenom   *string `json:"prenom,omitempty"`
}

// Apply returns u with the patch merged in. ID and CreatedAt never change.
func (p UserPatch) Apply(u User) User {
	setIf(&u.Email, p.Email)
	if p.Password != nil && *p.Password != "" {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	setIf(&u.Nom, p.Nom)
	setIf(&u.PostNom, p.PostNom)
	setIf(&u.Prenom, p.Prenom)
	return u
}
