package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UserRecord is a managed account: either a domain account or a local
// account on a single host. Zero values are the stored defaults.
type UserRecord struct {
	ID          uuid.UUID
	Name        string
	Description string
	Owner       string
	OwnerEmail  string
	Notes       string
	IsDomain    bool
	// Domain holds the domain name for domain accounts and the hostname
	// for local accounts.
	Domain string
}

// IdentityState tells how much of a record's identity is known.
type IdentityState int

const (
	IdentityUnresolved IdentityState = iota
	IdentityNameOnly
	IdentityResolved
)

func (s IdentityState) String() string {
	switch s {
	case IdentityNameOnly:
		return "name-only"
	case IdentityResolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// Identity returns the current identity state of the record.
func (u *UserRecord) Identity() IdentityState {
	switch {
	case u.ID != uuid.Nil:
		return IdentityResolved
	case u.Name != "":
		return IdentityNameOnly
	default:
		return IdentityUnresolved
	}
}

// HasUpdatableFields reports whether at least one field would be written by
// a partial update. Name and ID are never updatable; IsDomain only counts
// when true.
func (u *UserRecord) HasUpdatableFields() bool {
	return u.Description != "" || u.Owner != "" || u.OwnerEmail != "" ||
		u.Notes != "" || u.IsDomain || u.Domain != ""
}

// ValidateForCreate checks the fields a new record must carry.
func (u *UserRecord) ValidateForCreate() error {
	var errs []FieldError

	switch {
	case u.Name == "":
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	case strings.ContainsAny(u.Name, " \t\r\n"):
		errs = append(errs, FieldError{Field: "name", Message: "must not contain spaces"})
	case len(u.Name) > 255:
		errs = append(errs, FieldError{Field: "name", Message: "too long"})
	}

	if len(u.OwnerEmail) > 320 {
		errs = append(errs, FieldError{Field: "owner_email", Message: "too long"})
	}

	if u.IsDomain && u.Domain == "" {
		errs = append(errs, FieldError{Field: "domain", Message: "domain name required for domain accounts"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// CopyDetails overwrites every field except the ID from src.
func (u *UserRecord) CopyDetails(src UserRecord) {
	u.Name = src.Name
	u.Description = src.Description
	u.Owner = src.Owner
	u.OwnerEmail = src.OwnerEmail
	u.Notes = src.Notes
	u.IsDomain = src.IsDomain
	u.Domain = src.Domain
}

// LoginHash returns the per-system login hash "<user id>-<system id>".
func (u *UserRecord) LoginHash(systemID string) string {
	return fmt.Sprintf("%s-%s", u.ID, systemID)
}

func (u UserRecord) String() string {
	return fmt.Sprintf("%s-%s", u.Name, u.ID)
}
