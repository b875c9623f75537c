package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// InternalID is the primary key this system assigns to posts and comments.
type InternalID struct {
	uuid.UUID
}

// ExternalID is an identifier assigned by a destination platform. It never
// doubles as a primary key.
type ExternalID string

func NewInternalID() InternalID {
	return InternalID{UUID: uuid.New()}
}

func ParseInternalID(s string) (InternalID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return InternalID{}, fmt.Errorf("invalid internal id %q: %w", s, err)
	}
	return InternalID{UUID: id}, nil
}

func (id InternalID) IsZero() bool {
	return id.UUID == uuid.Nil
}

func (id ExternalID) String() string {
	return string(id)
}

func (id ExternalID) Value() (driver.Value, error) {
	return string(id), nil
}

// Ptr returns nil for an empty id so an unset external id is stored as NULL.
func (id ExternalID) Ptr() *ExternalID {
	if id == "" {
		return nil
	}
	return &id
}
