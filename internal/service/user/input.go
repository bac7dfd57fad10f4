package user

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/user-registry/internal/domain"
)

// RecordInput holds the client-supplied fields of a user record.
type RecordInput struct {
	UserID      string
	Name        string
	Description string
	Owner       string
	OwnerEmail  string
	Notes       string
	IsDomain    bool
	Domain      string
}

// Record converts the input into a domain record. An empty UserID leaves
// the id unset; a malformed one is a validation error.
func (i RecordInput) Record() (domain.UserRecord, error) {
	rec := domain.UserRecord{
		Name:        i.Name,
		Description: i.Description,
		Owner:       i.Owner,
		OwnerEmail:  i.OwnerEmail,
		Notes:       i.Notes,
		IsDomain:    i.IsDomain,
		Domain:      i.Domain,
	}

	if raw := strings.TrimSpace(i.UserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.UserRecord{}, domain.NewValidationError("user_id", "invalid uuid")
		}
		rec.ID = id
	}

	return rec, nil
}
