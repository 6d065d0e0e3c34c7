package helpers

import "github.com/google/uuid"

// EnhancedClaims is the token claims plus the caller's profile.
type EnhancedClaims struct {
	*CustomClaims
	Role      string    `json:"role"`
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	// AccessToken is forwarded to Supabase so row level security applies.
	AccessToken string `json:"-"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "super_admin"
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

// CanManage reports whether the caller may act on something owned by ownerID.
func (ec *EnhancedClaims) CanManage(ownerID uuid.UUID) bool {
	return ec.UserID == ownerID || ec.IsAdmin()
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "user"
	}
	return ec.Role
}
