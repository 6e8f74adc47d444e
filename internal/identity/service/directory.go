package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/store"
)

// DirectoryService tracks the last workspace directory each account
// used. One association per account, replaced wholesale on every
// update.
type DirectoryService struct {
	Store store.KV
}

// Associate records path as the account's current directory, stamping
// the access time. Re-associating overwrites the previous entry.
func (s *DirectoryService) Associate(ctx context.Context, accountUUID, path string) (domain.DirectoryAssociation, error) {
	assoc := domain.DirectoryAssociation{
		AccountUUID:    accountUUID,
		DirectoryPath:  path,
		LastAccessTime: time.Now().UTC(),
	}

	value, err := json.Marshal(assoc)
	if err != nil {
		return domain.DirectoryAssociation{}, fmt.Errorf("marshal directory association: %w", err)
	}

	if err := s.Store.Put(ctx, store.DirectoryKey(accountUUID), value, 0); err != nil {
		return domain.DirectoryAssociation{}, err
	}
	return assoc, nil
}

// Get fetches the account's directory association.
func (s *DirectoryService) Get(ctx context.Context, accountUUID string) (domain.DirectoryAssociation, error) {
	value, err := s.Store.Get(ctx, store.DirectoryKey(accountUUID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.DirectoryAssociation{}, ErrNotFound
		}
		return domain.DirectoryAssociation{}, err
	}

	var assoc domain.DirectoryAssociation
	if err := json.Unmarshal(value, &assoc); err != nil {
		return domain.DirectoryAssociation{}, fmt.Errorf("unmarshal directory association: %w", err)
	}
	return assoc, nil
}

// Remove drops the account's directory association. Removing an absent
// association is not an error.
func (s *DirectoryService) Remove(ctx context.Context, accountUUID string) error {
	return s.Store.Delete(ctx, store.DirectoryKey(accountUUID))
}
