package storage

import (
	"context"

	"github.com/buneko/backend/internal/domain/shared"
)

// ErrMediaStoreDisabled is returned for uploads when no bucket is configured
var ErrMediaStoreDisabled = shared.NewDomainError(shared.ErrUnavailable.Code, "Image uploads are not configured")

// DisabledMediaStore rejects uploads and ignores deletes. It is wired when
// storage is turned off so catalog writes without images keep working.
type DisabledMediaStore struct{}

// NewDisabledMediaStore creates a new DisabledMediaStore
func NewDisabledMediaStore() *DisabledMediaStore {
	return &DisabledMediaStore{}
}

var _ shared.MediaStore = (*DisabledMediaStore)(nil)

// Upload always fails with ErrMediaStoreDisabled
func (DisabledMediaStore) Upload(context.Context, string, shared.MediaUpload) (string, error) {
	return "", ErrMediaStoreDisabled
}

// Delete is a no-op
func (DisabledMediaStore) Delete(context.Context, string) error {
	return nil
}
