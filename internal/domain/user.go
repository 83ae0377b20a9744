package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// The closed set of roles. Earlier revisions used a two-role
// "client/therapist" split; "trainer" is the current name for the clinician
// role and "admin" was added for the practice dashboard. Documents stored
// with the legacy value are mapped on read by NormalizeRole.
const (
	RoleClient  Role = "client"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps legacy role values onto the current three-role model.
func NormalizeRole(r Role) Role {
	if r == Role("therapist") {
		return RoleTrainer
	}
	return r
}

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	switch NormalizeRole(r) {
	case RoleClient, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// User represents a user in the system (a Client, a Trainer, or an Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	// Stores ObjectIDs of Clients managed by this Trainer.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	// Stores the ObjectID of the Trainer managing this Client.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return NormalizeRole(u.Role) == RoleTrainer
}

func (u *User) IsClient() bool {
	return NormalizeRole(u.Role) == RoleClient
}

func (u *User) IsAdmin() bool {
	return NormalizeRole(u.Role) == RoleAdmin
}
