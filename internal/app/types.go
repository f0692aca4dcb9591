package app

import (
	"mdmctl/internal/core"
	"mdmctl/internal/types"
)

// RecordQuery picks records of one type. Names, Patterns and IDs are
// unioned; Where equalities then narrow the union.
type RecordQuery struct {
	Type     types.RecordType
	Names    []string
	Patterns []string
	IDs      []string
	Where    []string
}

func (q RecordQuery) hasCriteria() bool {
	return len(q.Names) > 0 || len(q.Patterns) > 0 || len(q.IDs) > 0 || len(q.Where) > 0
}

type ListRequest struct {
	Query         RecordQuery
	Paths         []string
	PatchVersions bool
	PatchPolicies bool
	// Versions restricts which version rows are shown.
	Versions     []string
	SortVersions bool
}

type ListResult struct {
	Type    types.RecordType
	Records []RecordListing
}

type RecordListing struct {
	Ref      types.RecordRef
	Values   []PathValue
	Packages *VersionView
	Policies *VersionView
}

// PathValue is one --path lookup against one record. Missing is set
// when the path does not exist in that record.
type PathValue struct {
	Expr    string
	Result  core.PathResult
	Missing bool
}

// VersionView is a version table where the column widths come from All
// and only Visible is printed.
type VersionView struct {
	All     []types.VersionEntry
	Visible []types.VersionEntry
}

func (v VersionView) Lines() []string {
	return core.NewVersionTable(v.All).Lines(v.Visible)
}

type InfoRequest struct {
	Query RecordQuery
}

type InfoResult struct {
	Type    types.RecordType
	Records []RecordInfo
}

type RecordInfo struct {
	Ref    types.RecordRef
	Detail types.RecordDetail
}

type CreateRequest struct {
	Type        types.RecordType
	Name        string
	PayloadPath string
	Sets        []string
}

type CreateResult struct {
	ID   string
	Name string
}

type UpdateRequest struct {
	Query       RecordQuery
	PayloadPath string
	Sets        []string
}

type UpdateResult struct {
	Updated []types.RecordRef
}

type DeleteRequest struct {
	Query RecordQuery
	Force bool
}

type DeleteResult struct {
	Deleted []types.RecordRef
	Skipped []types.RecordRef
}

type UploadRequest struct {
	Query RecordQuery
	Path  string
}

type UploadResult struct {
	Uploaded []types.RecordRef
}

type VersionsRequest struct {
	Title        string
	Versions     []string
	SortVersions bool
}

type VersionsResult struct {
	Title    types.SoftwareTitle
	Packages VersionView
	Policies VersionView
}
