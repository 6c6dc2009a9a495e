// Package users implements the user directory consulted by the approval
// workflow: manager lookup and the signature and stamp images each user owns.
package users

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/courier/pkg/auth"
)

// AssetKind names a user-owned image that can be composited onto a page.
type AssetKind string

const (
	AssetSignature AssetKind = "signature"
	AssetStamp     AssetKind = "stamp"
)

// ParseAssetKind validates an asset kind from a path or payload.
func ParseAssetKind(s string) (AssetKind, error) {
	switch k := AssetKind(s); k {
	case AssetSignature, AssetStamp:
		return k, nil
	default:
		return "", ErrInvalidAsset
	}
}

// User is a directory entry.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	SignatureKey *string   `json:"signature_key,omitempty"`
	StampKey     *string   `json:"stamp_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsManager reports whether u may receive approval requests.
func (u User) IsManager() bool {
	return slices.Contains(auth.ManagerRoles, u.Role)
}

// AssetKey returns the storage key of the asset of the given kind, or ""
// when the user has none.
func (u User) AssetKey(kind AssetKind) string {
	var key *string
	switch kind {
	case AssetSignature:
		key = u.SignatureKey
	case AssetStamp:
		key = u.StampKey
	}
	if key == nil {
		return ""
	}
	return *key
}

// CreateCommand carries the fields for a new directory entry.
type CreateCommand struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
