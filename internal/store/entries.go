package store

import (
	"slices"

	"github.com/hpungsan/vault/internal/digest"
	vaulterrors "github.com/hpungsan/vault/internal/errors"
	"github.com/hpungsan/vault/internal/record"
)

// AddEntry appends a new record for username/password and rewrites the file.
// Duplicate usernames are allowed. An empty label becomes record.DefaultLabel.
// The password is hashed immediately and not retained.
func (s *Store) AddEntry(username, password, label string) (record.Record, error) {
	if !record.ValidText(username) {
		return record.Record{}, vaulterrors.NewInvalidRequest("username contains characters that cannot be stored")
	}
	if !record.ValidText(label) {
		return record.Record{}, vaulterrors.NewInvalidRequest("label contains characters that cannot be stored")
	}

	rec := record.New(username, password, label, s.now())

	err := s.Update(func(records []record.Record) ([]record.Record, bool, error) {
		return append(records, rec), true, nil
	})
	if err != nil {
		return record.Record{}, err
	}

	s.logger.Info("added entry", "label", rec.Label)
	return rec, nil
}

// DeleteEntry removes the record at index and rewrites the file.
// An index outside [0, len) is a no-op: it returns false and writes nothing.
// Positions of later records shift down by one; callers re-list after a delete.
func (s *Store) DeleteEntry(index int) (bool, error) {
	deleted := false

	err := s.Update(func(records []record.Record) ([]record.Record, bool, error) {
		if index < 0 || index >= len(records) {
			return records, false, nil
		}
		deleted = true
		return slices.Delete(records, index, index+1), true, nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("deleted entry", "index", index)
	}
	return deleted, nil
}

// Lookup returns the first record, in file order, whose username hash and
// password hash both match the digests of username and password, together
// with its index. found is false when nothing matches.
func (s *Store) Lookup(username, password string) (rec record.Record, index int, found bool, err error) {
	usernameHash := digest.Sum(username)
	passwordHash := digest.Sum(password)

	records, err := s.Load()
	if err != nil {
		return record.Record{}, -1, false, err
	}

	for i, r := range records {
		// Plain comparison; digest.Equal is the constant-time alternative.
		if r.Matches(usernameHash, passwordHash) {
			return r, i, true, nil
		}
	}
	return record.Record{}, -1, false, nil
}
