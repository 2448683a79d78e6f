package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UserRoleType string

const (
	RoleAdmin  UserRoleType = "ADMIN"
	RoleTenant UserRoleType = "TENANT"
)

type TenantTypeType string

const (
	TenantTypeIndividual TenantTypeType = "INDIVIDUAL"
	TenantTypeCompany    TenantTypeType = "COMPANY"
	// TenantTypeResident is a non-billable occupant attached to a billable
	// tenant via ParentID. Residents never hold leases directly.
	TenantTypeResident TenantTypeType = "RESIDENT"
)

type User struct {
	ID        uuid.UUID      `json:"id"`
	Role      UserRoleType   `json:"role"`
	Type      TenantTypeType `json:"type"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     *string        `json:"email,omitempty"`
	Phone     *string        `json:"phone,omitempty"`
	Password  *string        `json:"-"`

	// ParentID points at the billable tenant when Type == RESIDENT.
	ParentID *uuid.UUID `json:"parent_id,omitempty"`

	// Current residency assignments; cleared when the last Active lease ends.
	LeaseID    *uuid.UUID `json:"lease_id,omitempty"`
	UnitID     *uuid.UUID `json:"unit_id,omitempty"`
	BedroomID  *uuid.UUID `json:"bedroom_id,omitempty"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`

	InviteToken   *string    `json:"-"`
	InviteExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BillableTenantID resolves the party invoices are attributed to:
// a Resident bills to its parent, everyone else bills to themselves.
func (u *User) BillableTenantID() uuid.UUID {
	if u.Type == TenantTypeResident && u.ParentID != nil {
		return *u.ParentID
	}
	return u.ID
}
