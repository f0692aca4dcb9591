package app

import (
	"context"
	"errors"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mdmctl/internal/core"
	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

func (s Service) List(ctx context.Context, req ListRequest) (ListResult, error) {
	if err := validatePatchFlags(req); err != nil {
		return ListResult{}, err
	}
	paths, err := core.ParsePaths(req.Paths)
	if err != nil {
		return ListResult{}, err
	}
	handler, err := s.handler(req.Query.Type)
	if err != nil {
		return ListResult{}, err
	}
	refs, err := s.selectRecords(ctx, handler, req.Query)
	if err != nil {
		return ListResult{}, err
	}
	var reconciler core.PatchReconciler
	if req.PatchVersions || req.PatchPolicies {
		if reconciler, err = s.reconciler(); err != nil {
			return ListResult{}, err
		}
	}
	result := ListResult{Type: req.Query.Type, Records: make([]RecordListing, 0, len(refs))}
	for _, ref := range refs {
		listing := RecordListing{Ref: ref}
		if len(paths) > 0 {
			detail, err := handler.Get(ctx, ref.ID)
			if err != nil {
				return ListResult{}, err
			}
			listing.Values = lookupPaths(detail, req.Paths, paths)
		}
		if req.PatchVersions {
			title, err := reconciler.TitleByRef(ctx, ref)
			if err != nil {
				return ListResult{}, wrapCoreError(err)
			}
			view := newVersionView(title.Versions, req.Versions, req.SortVersions)
			listing.Packages = &view
		}
		if req.PatchPolicies {
			entries, err := reconciler.ListPolicyVersions(ctx, types.SoftwareTitle{ID: ref.ID, Name: ref.Name})
			if err != nil {
				return ListResult{}, wrapCoreError(err)
			}
			view := newVersionView(entries, req.Versions, req.SortVersions)
			listing.Policies = &view
		}
		result.Records = append(result.Records, listing)
	}
	return result, nil
}

func (s Service) Info(ctx context.Context, req InfoRequest) (InfoResult, error) {
	handler, err := s.handler(req.Query.Type)
	if err != nil {
		return InfoResult{}, err
	}
	refs, err := s.selectRecords(ctx, handler, req.Query)
	if err != nil {
		return InfoResult{}, err
	}
	result := InfoResult{Type: req.Query.Type, Records: make([]RecordInfo, 0, len(refs))}
	for _, ref := range refs {
		detail, err := handler.Get(ctx, ref.ID)
		if err != nil {
			return InfoResult{}, err
		}
		result.Records = append(result.Records, RecordInfo{Ref: ref, Detail: detail})
	}
	return result, nil
}

// selectRecords lists every record of the handler's type and narrows the
// listing by the query. A --where path that is missing or not a scalar in
// any candidate aborts the whole selection.
func (s Service) selectRecords(ctx context.Context, handler ports.RecordHandlerPort, query RecordQuery) ([]types.RecordRef, error) {
	assert.NotEmpty(ctx, string(handler.Type()), "record handler must report its type")
	criteria, err := core.NewCriteria(query.Names, query.Patterns, query.IDs)
	if err != nil {
		return nil, err
	}
	equalities, err := core.ParseEqualities(query.Where)
	if err != nil {
		return nil, err
	}
	refs, err := handler.List(ctx)
	if err != nil {
		return nil, err
	}
	selected := core.Select(refs, criteria)
	log.Debug().
		Str("type", string(handler.Type())).
		Int("listed", len(refs)).
		Int("selected", len(selected)).
		Msg("records selected")
	if len(equalities) == 0 {
		return selected, nil
	}
	kept := make([]types.RecordRef, 0, len(selected))
	for _, ref := range selected {
		detail, err := handler.Get(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		keep, err := core.PathFilter(detail, equalities)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(codeForCoreError(err)).
				WithMsg(fmt.Sprintf("record %s (id %s): %s", ref.Name, ref.ID, err.Error())).
				WithCause(err)
		}
		if keep {
			kept = append(kept, ref)
		}
	}
	return kept, nil
}

func lookupPaths(detail types.RecordDetail, exprs []string, paths [][]string) []PathValue {
	values := make([]PathValue, 0, len(paths))
	for i, path := range paths {
		result, err := core.Resolve(detail, path)
		values = append(values, PathValue{
			Expr:    exprs[i],
			Result:  result,
			Missing: err != nil,
		})
	}
	return values
}

func newVersionView(entries []types.VersionEntry, visible []string, sortVersions bool) VersionView {
	if sortVersions {
		entries = core.SortVersions(entries)
	}
	return VersionView{All: entries, Visible: core.FilterVersions(entries, visible)}
}

func validatePatchFlags(req ListRequest) error {
	patchView := req.PatchVersions || req.PatchPolicies
	if patchView && !req.Query.Type.TracksVersions() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("--patch-versions and --patch-policies only apply to %s, not %s", types.RecordTypePatchSoftwareTitles, req.Query.Type))
	}
	if !patchView && (len(req.Versions) > 0 || req.SortVersions) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--version and --sort-versions require --patch-versions or --patch-policies")
	}
	return nil
}

func codeForCoreError(err error) errbuilder.ErrCode {
	var notFound *core.PathNotFoundError
	var ambiguous *core.AmbiguousPathError
	var missingTitle *core.TitleNotFoundError
	switch {
	case errors.As(err, &notFound), errors.As(err, &missingTitle):
		return errbuilder.CodeNotFound
	case errors.As(err, &ambiguous):
		return errbuilder.CodeFailedPrecondition
	default:
		return errbuilder.CodeInternal
	}
}

// wrapCoreError gives the typed core errors an errbuilder code; errors
// that already carry one pass through unchanged.
func wrapCoreError(err error) error {
	if err == nil {
		return nil
	}
	code := codeForCoreError(err)
	if code == errbuilder.CodeInternal {
		return err
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg(err.Error()).
		WithCause(err)
}
