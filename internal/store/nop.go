package store

import "context"

// NopBackend discards writes and returns no rows. It backs dry runs.
type NopBackend struct{}

func NewNopBackend() *NopBackend { return &NopBackend{} }

func (NopBackend) Upsert(_ context.Context, _ string, rows []Row, _ []string) (int, error) {
	return len(rows), nil
}
func (NopBackend) Select(context.Context, string, []string, []Filter) ([]Row, error) { return nil, nil }
func (NopBackend) Close() error                                                     { return nil }
