package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role tells which side of an appointment a caller acts on
type Role int

const (
	RolePatient Role = iota + 1
	RoleDoctor
)

// RoleNames constants
const (
	RoleNamePatient = "patient"
	RoleNameDoctor  = "doctor"
)

func (r Role) String() string {
	switch r {
	case RolePatient:
		return RoleNamePatient
	case RoleDoctor:
		return RoleNameDoctor
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole converts a role name to a Role
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case RoleNamePatient:
		return RolePatient, nil
	case RoleNameDoctor:
		return RoleDoctor, nil
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// Requester identifies the caller of a lifecycle operation
type Requester struct {
	ID   uuid.UUID
	Role Role
}

// PatientRequester builds a Requester acting as a patient
func PatientRequester(id uuid.UUID) Requester {
	return Requester{ID: id, Role: RolePatient}
}

// DoctorRequester builds a Requester acting as a doctor
func DoctorRequester(id uuid.UUID) Requester {
	return Requester{ID: id, Role: RoleDoctor}
}
