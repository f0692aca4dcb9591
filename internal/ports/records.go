package ports

import (
	"context"

	"mdmctl/internal/types"
)

// RecordStorePort hands out the handler for a record type. Unknown types
// are rejected here, once, rather than on every call.
type RecordStorePort interface {
	Handler(recordType types.RecordType) (RecordHandlerPort, error)
}

// RecordHandlerPort is the CRUD surface of a single record type on the
// management server.
type RecordHandlerPort interface {
	Type() types.RecordType
	Capabilities() types.RecordCapabilities
	List(ctx context.Context, filters ...types.ListFilter) ([]types.RecordRef, error)
	Get(ctx context.Context, id string) (types.RecordDetail, error)
	Create(ctx context.Context, payload types.RecordDetail) (string, error)
	Update(ctx context.Context, id string, payload types.RecordDetail) error
	Delete(ctx context.Context, id string) error
	Upload(ctx context.Context, id string, path string) error
}
