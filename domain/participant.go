// Package domain contains core concepts of the grant support system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// Role distinguishes grant applicants from reviewers.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Participant is an authenticated actor, either an applicant ("user")
// or a reviewer ("admin"). It is supplied by the token verifier at
// handshake time and lives only as long as its connection.
type Participant struct {
	ID   string
	Role Role
}

func (p Participant) IsAdmin() bool {
	return p.Role == RoleAdmin
}
