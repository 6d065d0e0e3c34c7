package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser       = "user"
	RoleOwner      = "owner"
	RoleSuperAdmin = "super_admin"

	DefaultAvatarPos = 50
)

func IsRole(r string) bool {
	return r == RoleUser || r == RoleOwner || r == RoleSuperAdmin
}

type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	AvatarPos int       `db:"avatar_pos" json:"avatar_pos"`
	BirthDate *Date     `db:"birth_date" json:"birth_date"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	AvatarPos *int    `json:"avatar_pos" validate:"omitempty,gte=0,lte=100"`
	BirthDate *Date   `json:"birth_date"`
}

func (u *ProfileUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.FullName != nil {
		fields["full_name"] = *u.FullName
	}
	if u.AvatarURL != nil {
		fields["avatar_url"] = *u.AvatarURL
	}
	if u.AvatarPos != nil {
		fields["avatar_pos"] = *u.AvatarPos
	}
	if u.BirthDate != nil {
		if u.BirthDate.IsZero() {
			fields["birth_date"] = nil
		} else {
			fields["birth_date"] = u.BirthDate.String()
		}
	}
	return fields
}

type PasswordChange struct {
	New     string `json:"new" validate:"required,min=8"`
	Confirm string `json:"confirm" validate:"required"`
}

type EmailChange struct {
	Email string `json:"email" validate:"required,email"`
}

type RoleChange struct {
	Role string `json:"role" validate:"required,oneof=user owner super_admin"`
}

// AuthSession is what login and refresh hand back to the handlers.
type AuthSession struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresIn    int       `json:"expires_in"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
}

type AdminStats struct {
	Users    int64 `json:"users"`
	Spaces   int64 `json:"spaces"`
	Bookings int64 `json:"bookings"`
	Events   int64 `json:"events"`
}
