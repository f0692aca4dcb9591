package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

// PolicyTitlePath is where a patch policy records the software title it
// is bound to. Stores use it as a list filter.
const PolicyTitlePath = "general.software_title_configuration_id"

var (
	versionsPath      = []string{"versions"}
	versionEntryKey   = "version"
	softwareVersion   = []string{"software_version"}
	packageNamePath   = []string{"package", "name"}
	targetVersionPath = []string{"general", "target_version"}
	recordNamePaths   = [][]string{{"name"}, {"general", "name"}}
)

// PatchReconciler joins a software title's published versions with the
// versions its patch policies currently target.
type PatchReconciler struct {
	Titles   ports.RecordHandlerPort
	Policies ports.RecordHandlerPort
}

func NewPatchReconciler(titles ports.RecordHandlerPort, policies ports.RecordHandlerPort) PatchReconciler {
	return PatchReconciler{
		Titles:   titles,
		Policies: policies,
	}
}

// FindTitle scans every software title for an exact name match; the first
// one listed wins.
func (r PatchReconciler) FindTitle(ctx context.Context, name string) (types.SoftwareTitle, error) {
	if r.Titles == nil {
		return types.SoftwareTitle{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("patch reconciler requires a software title handler")
	}
	refs, err := r.Titles.List(ctx)
	if err != nil {
		return types.SoftwareTitle{}, err
	}
	for _, ref := range refs {
		if ref.Name == name {
			return r.TitleByRef(ctx, ref)
		}
	}
	return types.SoftwareTitle{}, &TitleNotFoundError{Name: name}
}

func (r PatchReconciler) TitleByRef(ctx context.Context, ref types.RecordRef) (types.SoftwareTitle, error) {
	if r.Titles == nil {
		return types.SoftwareTitle{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("patch reconciler requires a software title handler")
	}
	detail, err := r.Titles.Get(ctx, ref.ID)
	if err != nil {
		return types.SoftwareTitle{}, err
	}
	versions, err := ListVersions(detail)
	if err != nil {
		return types.SoftwareTitle{}, err
	}
	name := ref.Name
	if name == "" {
		name = RecordName(detail)
	}
	return types.SoftwareTitle{ID: ref.ID, Name: name, Versions: versions}, nil
}

// ListPolicyVersions returns (target version, policy name) for every
// patch policy bound to title, in listing order. Each policy's detail is
// fetched to read its current target.
func (r PatchReconciler) ListPolicyVersions(ctx context.Context, title types.SoftwareTitle) ([]types.VersionEntry, error) {
	if r.Policies == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("patch reconciler requires a patch policy handler")
	}
	refs, err := r.Policies.List(ctx, types.ListFilter{Path: PolicyTitlePath, Value: title.ID})
	if err != nil {
		return nil, err
	}
	entries := make([]types.VersionEntry, 0, len(refs))
	for _, ref := range refs {
		detail, err := r.Policies.Get(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		result, err := Resolve(detail, targetVersionPath)
		if err != nil {
			return nil, err
		}
		if !result.IsScalar() {
			return nil, &AmbiguousPathError{Path: targetVersionPath, Value: result.Value}
		}
		log.Debug().
			Str("policy", ref.Name).
			Str("target_version", result.Text()).
			Msg("patch policy target")
		entries = append(entries, types.VersionEntry{Version: result.Text(), Label: ref.Name})
	}
	return entries, nil
}

// ListVersions reads the versions a software title publishes together
// with the package that satisfies each one.
func ListVersions(detail types.RecordDetail) ([]types.VersionEntry, error) {
	result, err := Resolve(detail, versionsPath)
	if err != nil {
		return []types.VersionEntry{}, nil
	}
	raw := result.Value
	if container, ok := raw.(map[string]any); ok {
		inner, found := container[versionEntryKey]
		if !found {
			return []types.VersionEntry{}, nil
		}
		raw = inner
	}
	shape, err := decodeVersionShape(raw)
	if err != nil {
		return nil, err
	}
	return shape.entries(), nil
}

// versionShape is the decoded form of a title's version field. Servers
// send a bare object when a title has one version and a list otherwise.
type versionShape interface {
	entries() []types.VersionEntry
}

type singleVersion struct {
	item map[string]any
}

func (s singleVersion) entries() []types.VersionEntry {
	return []types.VersionEntry{versionEntry(s.item)}
}

type versionSequence struct {
	items []map[string]any
}

func (s versionSequence) entries() []types.VersionEntry {
	out := make([]types.VersionEntry, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, versionEntry(item))
	}
	return out
}

func decodeVersionShape(raw any) (versionShape, error) {
	switch typed := raw.(type) {
	case nil:
		return versionSequence{}, nil
	case map[string]any:
		return singleVersion{item: typed}, nil
	case []any:
		items := make([]map[string]any, 0, len(typed))
		for i, element := range typed {
			item, ok := element.(map[string]any)
			if !ok {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("software title version %d is not an object", i))
			}
			items = append(items, item)
		}
		return versionSequence{items: items}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unexpected software title versions shape: %T", raw))
	}
}

func versionEntry(item map[string]any) types.VersionEntry {
	return types.VersionEntry{
		Version: scalarOr(item, softwareVersion, ""),
		Label:   scalarOr(item, packageNamePath, types.VersionMissingLabel),
	}
}

func scalarOr(detail map[string]any, path []string, fallback string) string {
	result, err := Resolve(detail, path)
	if err != nil || !result.IsScalar() || result.Value == nil {
		return fallback
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return fallback
	}
	return text
}

// RecordName reads a record's display name from its detail. Most record
// types keep it under general.name, a few at the top level.
func RecordName(detail types.RecordDetail) string {
	for _, path := range recordNamePaths {
		if name := scalarOr(detail, path, ""); name != "" {
			return name
		}
	}
	return ""
}
