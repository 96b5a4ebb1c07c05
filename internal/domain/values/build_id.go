// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// BuildID uniquely identifies one sketch build.
// Reports are stored and looked up by this ID.
type BuildID struct {
	value uuid.UUID
}

// NewBuildID creates a new random build ID
func NewBuildID() BuildID {
	return BuildID{value: uuid.New()}
}

// ParseBuildID parses a string into a BuildID
func ParseBuildID(s string) (BuildID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BuildID{}, fmt.Errorf("invalid build ID: %w", err)
	}
	return BuildID{value: id}, nil
}

// MustParseBuildID parses a string or panics (for tests only)
func MustParseBuildID(s string) BuildID {
	id, err := ParseBuildID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// BuildIDFromUUID creates a BuildID from a uuid.UUID
func BuildIDFromUUID(id uuid.UUID) BuildID {
	return BuildID{value: id}
}

// String returns the string representation
func (b BuildID) String() string {
	return b.value.String()
}

// UUID returns the underlying uuid.UUID
func (b BuildID) UUID() uuid.UUID {
	return b.value
}

// IsZero returns true if this is the zero value
func (b BuildID) IsZero() bool {
	return b.value == uuid.Nil
}

// Equals checks if two BuildIDs are equal
func (b BuildID) Equals(other BuildID) bool {
	return b.value == other.value
}

// MarshalText implements encoding.TextMarshaler so the ID renders as a
// plain string in JSON and YAML reports.
func (b BuildID) MarshalText() ([]byte, error) {
	return []byte(b.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (b *BuildID) UnmarshalText(data []byte) error {
	id, err := ParseBuildID(string(data))
	if err != nil {
		return err
	}
	*b = id
	return nil
}
