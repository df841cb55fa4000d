package identity

import (
	"fmt"
	"time"
)

// Status classifies how a user's auth-layer claims relate to their profile
// document.
type Status string

const (
	StatusSynced      Status = "synced"
	StatusMismatched  Status = "mismatched"
	StatusAuthOnly    Status = "auth_only"
	StatusProfileOnly Status = "profile_only"
)

// Direction selects which side a Sync pushes onto the other.
type Direction string

const (
	DirectionToAuth    Direction = "toAuth"
	DirectionToProfile Direction = "toProfile"
	DirectionBoth      Direction = "both"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionToAuth, DirectionToProfile, DirectionBoth:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown sync direction %q", s)
	}
}

// Claims are the role/organization attributes issued by the authentication
// layer, independent of the profile document.
type Claims struct {
	Role           string `json:"role,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
	TeleoperatorID string `json:"teleoperatorId,omitempty"`
}

// Profile is the user's profile document.
type Profile struct {
	UserID         string    `json:"id"`
	Role           string    `json:"role,omitempty"`
	OrganizationID string    `json:"organizationId,omitempty"`
	TeleoperatorID string    `json:"teleoperatorId,omitempty"`
	DisplayName    string    `json:"displayName,omitempty"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// Result reports one reconciliation.
type Result struct {
	UserID string   `json:"userId"`
	Status Status   `json:"status"`
	Diffs  []string `json:"diffs,omitempty"`
}

// Compare classifies the two representations of a user. Pure: no side
// effects. Only role and organizationId participate in the comparison;
// profile-only fields like displayName never count as drift.
func Compare(userID string, claims *Claims, profile *Profile) Result {
	result := Result{UserID: userID}

	switch {
	case claims == nil && profile == nil:
		result.Status = StatusSynced
		return result
	case profile == nil:
		result.Status = StatusAuthOnly
		return result
	case claims == nil:
		result.Status = StatusProfileOnly
		return result
	}

	if claims.Role != profile.Role {
		result.Diffs = append(result.Diffs,
			fmt.Sprintf("role: auth=%q profile=%q", claims.Role, profile.Role))
	}
	if claims.OrganizationID != profile.OrganizationID {
		result.Diffs = append(result.Diffs,
			fmt.Sprintf("organizationId: auth=%q profile=%q", claims.OrganizationID, profile.OrganizationID))
	}

	if len(result.Diffs) > 0 {
		result.Status = StatusMismatched
	} else {
		result.Status = StatusSynced
	}
	return result
}
