package ports

import "mdmctl/internal/types"

// PayloadReaderPort loads a record body from a JSON or YAML file.
type PayloadReaderPort interface {
	ReadPayload(path string) (types.RecordDetail, error)
}
