package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mdmctl/internal/core"
	"mdmctl/internal/types"
)

func (s Service) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	handler, err := s.handler(req.Type)
	if err != nil {
		return CreateResult{}, err
	}
	if !handler.Capabilities().Create {
		return CreateResult{}, unsupported(req.Type, "new")
	}
	sets, err := core.ParseEqualities(req.Sets)
	if err != nil {
		return CreateResult{}, err
	}
	payload := types.RecordDetail{}
	if strings.TrimSpace(req.PayloadPath) != "" {
		if payload, err = s.readPayload(req.PayloadPath); err != nil {
			return CreateResult{}, err
		}
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		if err := core.SetPath(payload, namePath(payload), name); err != nil {
			return CreateResult{}, err
		}
	}
	if err := applySets(payload, sets); err != nil {
		return CreateResult{}, err
	}
	name := core.RecordName(payload)
	if name == "" {
		return CreateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("new record needs a name: pass --name or set one in --file")
	}
	id, err := handler.Create(ctx, payload)
	if err != nil {
		return CreateResult{}, err
	}
	log.Info().Str("type", string(req.Type)).Str("id", id).Str("name", name).Msg("record created")
	return CreateResult{ID: id, Name: name}, nil
}

func (s Service) Update(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	if len(req.Sets) == 0 && strings.TrimSpace(req.PayloadPath) == "" {
		return UpdateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("update needs --set or --file")
	}
	if err := requireCriteria(req.Query, "update"); err != nil {
		return UpdateResult{}, err
	}
	sets, err := core.ParseEqualities(req.Sets)
	if err != nil {
		return UpdateResult{}, err
	}
	handler, err := s.handler(req.Query.Type)
	if err != nil {
		return UpdateResult{}, err
	}
	if !handler.Capabilities().Update {
		return UpdateResult{}, unsupported(req.Query.Type, "update")
	}
	var base types.RecordDetail
	if strings.TrimSpace(req.PayloadPath) != "" {
		if base, err = s.readPayload(req.PayloadPath); err != nil {
			return UpdateResult{}, err
		}
	}
	refs, err := s.selectRecords(ctx, handler, req.Query)
	if err != nil {
		return UpdateResult{}, err
	}
	result := UpdateResult{Updated: make([]types.RecordRef, 0, len(refs))}
	for _, ref := range refs {
		var detail types.RecordDetail
		if base != nil {
			detail = cloneDetail(base)
		} else if detail, err = handler.Get(ctx, ref.ID); err != nil {
			return result, err
		}
		if err := applySets(detail, sets); err != nil {
			return result, err
		}
		if err := handler.Update(ctx, ref.ID, detail); err != nil {
			return result, err
		}
		log.Info().Str("type", string(req.Query.Type)).Str("id", ref.ID).Str("name", ref.Name).Msg("record updated")
		result.Updated = append(result.Updated, ref)
	}
	return result, nil
}

// Delete removes every selected record. Unless Force is set each one is
// confirmed on its own; a refusal skips that record only.
func (s Service) Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error) {
	if req.Force {
		if err := requireCriteria(req.Query, "delete --force"); err != nil {
			return DeleteResult{}, err
		}
	} else if s.Prompt == nil {
		return DeleteResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("delete needs a confirmation prompt or --force")
	}
	handler, err := s.handler(req.Query.Type)
	if err != nil {
		return DeleteResult{}, err
	}
	if !handler.Capabilities().Delete {
		return DeleteResult{}, unsupported(req.Query.Type, "delete")
	}
	refs, err := s.selectRecords(ctx, handler, req.Query)
	if err != nil {
		return DeleteResult{}, err
	}
	var result DeleteResult
	for _, ref := range refs {
		assert.NotEmpty(ctx, ref.ID, "selected record must have an id")
		if !req.Force {
			ok, err := s.Prompt.Confirm(ctx, fmt.Sprintf("Delete %s %q (id %s)?", req.Query.Type, ref.Name, ref.ID))
			if err != nil {
				return result, err
			}
			if !ok {
				result.Skipped = append(result.Skipped, ref)
				continue
			}
		}
		if err := handler.Delete(ctx, ref.ID); err != nil {
			return result, err
		}
		log.Info().Str("type", string(req.Query.Type)).Str("id", ref.ID).Str("name", ref.Name).Msg("record deleted")
		result.Deleted = append(result.Deleted, ref)
	}
	return result, nil
}

func (s Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return UploadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("upload needs --file")
	}
	if err := requireCriteria(req.Query, "upload"); err != nil {
		return UploadResult{}, err
	}
	handler, err := s.handler(req.Query.Type)
	if err != nil {
		return UploadResult{}, err
	}
	if !handler.Capabilities().Upload {
		return UploadResult{}, unsupported(req.Query.Type, "upload")
	}
	if info, err := os.Stat(path); err != nil {
		return UploadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("upload file not found: %s", path)).
			WithCause(err)
	} else if info.IsDir() {
		return UploadResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("upload file is a directory: %s", path))
	}
	refs, err := s.selectRecords(ctx, handler, req.Query)
	if err != nil {
		return UploadResult{}, err
	}
	result := UploadResult{Uploaded: make([]types.RecordRef, 0, len(refs))}
	for _, ref := range refs {
		if err := handler.Upload(ctx, ref.ID, path); err != nil {
			return result, err
		}
		log.Info().Str("type", string(req.Query.Type)).Str("id", ref.ID).Str("file", path).Msg("file uploaded")
		result.Uploaded = append(result.Uploaded, ref)
	}
	return result, nil
}

func (s Service) readPayload(path string) (types.RecordDetail, error) {
	if s.Payloads == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("payload reader is not configured")
	}
	return s.Payloads.ReadPayload(path)
}

func applySets(detail types.RecordDetail, sets []core.PathEquality) error {
	for _, set := range sets {
		if err := core.SetPath(detail, set.Path, core.ScalarValue(set.Expected)); err != nil {
			return err
		}
	}
	return nil
}

// namePath is general.name for records laid out with a general section
// and the top-level name otherwise.
func namePath(payload types.RecordDetail) []string {
	if _, ok := payload["general"].(map[string]any); ok {
		return []string{"general", "name"}
	}
	return []string{"name"}
}

func requireCriteria(query RecordQuery, operation string) error {
	if query.hasCriteria() {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s needs --name, --regex, --id or --where", operation))
}

func unsupported(recordType types.RecordType, operation string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s does not support %s", recordType, operation))
}

func cloneDetail(detail types.RecordDetail) types.RecordDetail {
	out := make(types.RecordDetail, len(detail))
	for key, value := range detail {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneDetail(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
