// Package domain holds the identifier primitives shared across the ledger.
//
// Typed IDs prevent cross-wiring (passing a parent identity where a child
// identifier is expected) at compile time. Construct from external input via
// the Parse helpers so validity is enforced at trust boundaries.
package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// Identity names an actor on the ledger: a hospital, a parent, or the
// authority. The zero Identity is the "null" identity; it is never a valid
// actor and marks the mint/burn endpoints of an ownership change.
type Identity uuid.UUID

// NilIdentity is the zero identity.
var NilIdentity = Identity(uuid.Nil)

// NewIdentity returns a fresh random identity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// ParseIdentity validates and returns an Identity from external input.
func ParseIdentity(s string) (Identity, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilIdentity, err
	}
	return Identity(u), nil
}

func (i Identity) String() string {
	return uuid.UUID(i).String()
}

// MarshalText encodes the identity as its canonical UUID string.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText parses an identity from its canonical UUID string.
func (i *Identity) UnmarshalText(data []byte) error {
	u, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*i = Identity(u)
	return nil
}

// IsNil reports whether the identity is the null identity.
func (i Identity) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// ChildID is the unique integer naming one child's record. IDs are assigned
// by the record store as a strictly increasing counter starting at 1 and are
// never reused; zero means "no record".
type ChildID uint64

// ParseChildID parses a decimal child identifier from external input.
func ParseChildID(s string) (ChildID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ChildID(n), nil
}

func (c ChildID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

// IsZero reports whether the identifier is unassigned.
func (c ChildID) IsZero() bool {
	return c == 0
}
