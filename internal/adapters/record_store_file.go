package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mdmctl/internal/core"
	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

// RecordStoreFileAdapter keeps records as <Dir>/<type>/<id>.json, one
// JSON document per record. Attachments land in <id>.files/.
type RecordStoreFileAdapter struct {
	Dir string
}

func NewRecordStoreFileAdapter(dir string) RecordStoreFileAdapter {
	return RecordStoreFileAdapter{Dir: dir}
}

func (a RecordStoreFileAdapter) Handler(recordType types.RecordType) (ports.RecordHandlerPort, error) {
	if strings.TrimSpace(a.Dir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("records directory is empty")
	}
	endpoint, err := lookupEndpoint(recordType)
	if err != nil {
		return nil, err
	}
	return recordHandlerFile{
		dir:          filepath.Join(a.Dir, string(recordType)),
		recordType:   recordType,
		capabilities: endpoint.capabilities,
	}, nil
}

type recordHandlerFile struct {
	dir          string
	recordType   types.RecordType
	capabilities types.RecordCapabilities
}

func (h recordHandlerFile) Type() types.RecordType {
	return h.recordType
}

func (h recordHandlerFile) Capabilities() types.RecordCapabilities {
	return h.capabilities
}

func (h recordHandlerFile) List(ctx context.Context, filters ...types.ListFilter) ([]types.RecordRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.RecordRef{}, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s records", h.recordType)).
			WithCause(err)
	}
	refs := make([]types.RecordRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		detail, err := h.read(id)
		if err != nil {
			return nil, err
		}
		if !matchesListFilters(detail, filters) {
			continue
		}
		refs = append(refs, types.RecordRef{ID: id, Name: core.RecordName(detail)})
	}
	return refs, nil
}

func (h recordHandlerFile) Get(ctx context.Context, id string) (types.RecordDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRecordID(id); err != nil {
		return nil, err
	}
	return h.read(id)
}

func (h recordHandlerFile) Create(ctx context.Context, payload types.RecordDetail) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !h.capabilities.Create {
		return "", capabilityError(h.recordType, "create")
	}
	if err := os.MkdirAll(h.dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create %s directory", h.recordType)).
			WithCause(err)
	}
	id, err := h.nextID()
	if err != nil {
		return "", err
	}
	if err := h.write(id, payload); err != nil {
		return "", err
	}
	log.Debug().Str("type", string(h.recordType)).Str("id", id).Msg("record created")
	return id, nil
}

func (h recordHandlerFile) Update(ctx context.Context, id string, payload types.RecordDetail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.capabilities.Update {
		return capabilityError(h.recordType, "update")
	}
	if err := validateRecordID(id); err != nil {
		return err
	}
	if _, err := os.Stat(h.recordPath(id)); err != nil {
		return recordNotFound(h.recordType, id, err)
	}
	return h.write(id, payload)
}

func (h recordHandlerFile) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.capabilities.Delete {
		return capabilityError(h.recordType, "delete")
	}
	if err := validateRecordID(id); err != nil {
		return err
	}
	if err := os.Remove(h.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return recordNotFound(h.recordType, id, err)
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to delete record").
			WithCause(err)
	}
	if err := os.RemoveAll(h.attachmentDir(id)); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to delete record attachments").
			WithCause(err)
	}
	log.Debug().Str("type", string(h.recordType)).Str("id", id).Msg("record deleted")
	return nil
}

func (h recordHandlerFile) Upload(ctx context.Context, id string, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.capabilities.Upload {
		return capabilityError(h.recordType, "upload")
	}
	if err := validateRecordID(id); err != nil {
		return err
	}
	if _, err := os.Stat(h.recordPath(id)); err != nil {
		return recordNotFound(h.recordType, id, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open upload file").
			WithCause(err)
	}
	defer src.Close()
	destDir := h.attachmentDir(id)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create attachment directory").
			WithCause(err)
	}
	dest, err := os.Create(filepath.Join(destDir, filepath.Base(path)))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create attachment").
			WithCause(err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		_ = dest.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy attachment").
			WithCause(err)
	}
	if err := dest.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write attachment").
			WithCause(err)
	}
	return nil
}

func (h recordHandlerFile) recordPath(id string) string {
	return filepath.Join(h.dir, id+".json")
}

func (h recordHandlerFile) attachmentDir(id string) string {
	return filepath.Join(h.dir, id+".files")
}

func (h recordHandlerFile) read(id string) (types.RecordDetail, error) {
	data, err := os.ReadFile(h.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, recordNotFound(h.recordType, id, err)
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read record").
			WithCause(err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var detail types.RecordDetail
	if err := decoder.Decode(&detail); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to parse record %s/%s", h.recordType, id)).
			WithCause(err)
	}
	if detail == nil {
		detail = types.RecordDetail{}
	}
	return detail, nil
}

func (h recordHandlerFile) write(id string, payload types.RecordDetail) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to encode record").
			WithCause(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(h.recordPath(id), data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write record").
			WithCause(err)
	}
	return nil
}

// nextID hands out one more than the largest numeric id on disk.
func (h recordHandlerFile) nextID() (string, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s records", h.recordType)).
			WithCause(err)
	}
	var highest uint64
	for _, entry := range entries {
		stem, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok {
			continue
		}
		if value, err := strconv.ParseUint(stem, 10, 64); err == nil && value > highest {
			highest = value
		}
	}
	return strconv.FormatUint(highest+1, 10), nil
}

func matchesListFilters(detail types.RecordDetail, filters []types.ListFilter) bool {
	for _, filter := range filters {
		result, err := core.Resolve(detail, core.ParsePath(filter.Path))
		if err != nil || !result.IsScalar() || result.Text() != filter.Value {
			return false
		}
	}
	return true
}

func validateRecordID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("record id is empty")
	}
	if trimmed != id || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid record id: %q", id))
	}
	return nil
}

func recordNotFound(recordType types.RecordType, id string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s record not found: %s", recordType, id)).
		WithCause(cause)
}

var _ ports.RecordStorePort = RecordStoreFileAdapter{}
var _ ports.RecordHandlerPort = recordHandlerFile{}
