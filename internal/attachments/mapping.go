package attachments

import "github.com/JaimeStill/courier/pkg/repository"

const columns = "id, name, size, type, url, key, bucket, storage, hash, created_at"

func scanAttachment(s repository.Scanner) (Attachment, error) {
	var a Attachment
	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Size,
		&a.Type,
		&a.URL,
		&a.Key,
		&a.Bucket,
		&a.Storage,
		&a.Hash,
		&a.CreatedAt,
	)
	return a, err
}
