package models

import (
	"encoding/json"
	"strings"
)

// UserRole represents the role of the acting user
// #IMPLEMENTATION_DECISION: UPPERCASE in Go code, lowercase in JSON serialization
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleHR       UserRole = "HR"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleEmployee UserRole = "EMPLOYEE"
)

// MarshalJSON converts UserRole to lowercase for JSON serialization
func (ur UserRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(string(ur)))
}

// UnmarshalJSON converts lowercase JSON to UserRole
func (ur *UserRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*ur = UserRole(strings.ToUpper(s))
	return nil
}

// IsValid checks if the UserRole is a valid value
func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleHR, UserRoleManager, UserRoleEmployee:
		return true
	}
	return false
}

// Actor is the acting identity passed explicitly into every core operation
// #INTEGRATION_POINT: Built from JWT claims by the auth middleware, never read from a global
// #DATA_ASSUMPTION: UserID is an opaque reference to the external identity system
type Actor struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
}

// NewActor creates an actor, normalizing the role to its canonical form
func NewActor(userID string, role string) Actor {
	return Actor{UserID: userID, Role: UserRole(strings.ToUpper(role))}
}

// CanAdminister returns true if the actor may use administrative overrides
// #BUSINESS_RULE: Admin and HR roles manage questionnaires and assignments
func (a Actor) CanAdminister() bool {
	return a.Role == UserRoleAdmin || a.Role == UserRoleHR
}

// Is returns true if the actor is the given user
func (a Actor) Is(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}
