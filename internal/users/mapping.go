package users

import (
	"github.com/JaimeStill/courier/pkg/query"
	"github.com/JaimeStill/courier/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("name", "Name").
	Project("email", "Email").
	Project("role", "Role").
	Project("signature_key", "SignatureKey").
	Project("stamp_key", "StampKey").
	Project("created_at", "CreatedAt")

var assetColumns = map[AssetKind]string{
	AssetSignature: "signature_key",
	AssetStamp:     "stamp_key",
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.SignatureKey,
		&u.StampKey,
		&u.CreatedAt,
	)
	return u, err
}
