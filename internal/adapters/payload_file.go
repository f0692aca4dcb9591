package adapters

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

// PayloadFileAdapter reads record bodies for new/update. Files ending in
// .json are decoded as JSON with numbers kept verbatim; anything else is
// read as YAML. The path "-" reads Stdin.
type PayloadFileAdapter struct {
	Stdin io.Reader
}

func NewPayloadFileAdapter(stdin io.Reader) PayloadFileAdapter {
	return PayloadFileAdapter{Stdin: stdin}
}

func (a PayloadFileAdapter) ReadPayload(path string) (types.RecordDetail, error) {
	data, err := a.read(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("payload file is empty")
	}
	var payload types.RecordDetail
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		err = decoder.Decode(&payload)
	} else {
		err = yaml.Unmarshal(data, &payload)
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse payload file").
			WithCause(err)
	}
	if payload == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("payload is not a mapping")
	}
	return payload, nil
}

func (a PayloadFileAdapter) read(path string) ([]byte, error) {
	if path == "-" {
		if a.Stdin == nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("no standard input to read payload from")
		}
		data, err := io.ReadAll(a.Stdin)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read payload from standard input").
				WithCause(err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("payload file not found").
			WithCause(err)
	}
	return data, nil
}

var _ ports.PayloadReaderPort = PayloadFileAdapter{}
