package store

import (
	"context"

	"github.com/amishk599/shiftline/internal/model"
)

// NopStore is the dry-run store. It persists nothing and reports every job
// as created.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) EnsureEmployer(_ context.Context, e model.Employer) (model.Employer, error) {
	return e, nil
}

func (s *NopStore) Upsert(_ context.Context, _ model.CanonicalJob) (model.UpsertResult, error) {
	return model.Created, nil
}
