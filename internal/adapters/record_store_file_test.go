package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdmctl/internal/core"
	"mdmctl/internal/types"
)

func seedRecord(t *testing.T, dir string, recordType types.RecordType, id string, body string) {
	t.Helper()
	typeDir := filepath.Join(dir, string(recordType))
	require.NoError(t, os.MkdirAll(typeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(typeDir, id+".json"), []byte(body), 0o644))
}

func TestRecordStoreFileList(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, types.RecordTypePolicies, "1", `{"general":{"id":1,"name":"Alpha"}}`)
	seedRecord(t, dir, types.RecordTypePolicies, "2", `{"general":{"id":2,"name":"Beta"}}`)
	seedRecord(t, dir, types.RecordTypePackages, "9", `{"name":"Firefox.pkg"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, string(types.RecordTypePolicies), "notes.txt"), []byte("x"), 0o644))

	handler, err := NewRecordStoreFileAdapter(dir).Handler(types.RecordTypePolicies)
	require.NoError(t, err)
	refs, err := handler.List(t.Context())
	require.NoError(t, err)
	want := []types.RecordRef{{ID: "1", Name: "Alpha"}, {ID: "2", Name: "Beta"}}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("unexpected refs (-want +got):\n%s", diff)
	}
}

func TestRecordStoreFileListMissingTypeDirIsEmpty(t *testing.T) {
	handler, err := NewRecordStoreFileAdapter(t.TempDir()).Handler(types.RecordTypeScripts)
	require.NoError(t, err)
	refs, err := handler.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRecordStoreFileListFilter(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, types.RecordTypePatchPolicies, "20", `{"general":{"name":"Firefox - Testing","software_title_configuration_id":4}}`)
	seedRecord(t, dir, types.RecordTypePatchPolicies, "21", `{"general":{"name":"Zoom","software_title_configuration_id":5}}`)
	seedRecord(t, dir, types.RecordTypePatchPolicies, "22", `{"general":{"name":"Unbound"}}`)

	handler, err := NewRecordStoreFileAdapter(dir).Handler(types.RecordTypePatchPolicies)
	require.NoError(t, err)
	refs, err := handler.List(t.Context(), types.ListFilter{Path: core.PolicyTitlePath, Value: "4"})
	require.NoError(t, err)
	assert.Equal(t, []types.RecordRef{{ID: "20", Name: "Firefox - Testing"}}, refs)
}

func TestRecordStoreFileCRUD(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, types.RecordTypeCategories, "7", `{"name":"Existing"}`)
	handler, err := NewRecordStoreFileAdapter(dir).Handler(types.RecordTypeCategories)
	require.NoError(t, err)
	ctx := t.Context()

	id, err := handler.Create(ctx, types.RecordDetail{"name": "Browsers"})
	require.NoError(t, err)
	assert.Equal(t, "8", id)

	detail, err := handler.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Browsers", core.RecordName(detail))

	require.NoError(t, core.SetPath(detail, []string{"name"}, "Web"))
	require.NoError(t, handler.Update(ctx, id, detail))
	detail, err = handler.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Web", core.RecordName(detail))

	require.NoError(t, handler.Delete(ctx, id))
	_, err = handler.Get(ctx, id)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	err = handler.Delete(ctx, id)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	err = handler.Update(ctx, id, detail)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestRecordStoreFileKeepsNumberText(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, types.RecordTypeScripts, "3", `{"general":{"name":"cleanup","priority":10.0}}`)
	handler, err := NewRecordStoreFileAdapter(dir).Handler(types.RecordTypeScripts)
	require.NoError(t, err)

	detail, err := handler.Get(t.Context(), "3")
	require.NoError(t, err)
	require.NoError(t, handler.Update(t.Context(), "3", detail))
	data, err := os.ReadFile(filepath.Join(dir, string(types.RecordTypeScripts), "3.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priority": 10.0`)
}

func TestRecordStoreFileUpload(t *testing.T) {
	dir := t.TempDir()
	seedRecord(t, dir, types.RecordTypePackages, "5", `{"name":"Firefox.pkg"}`)
	artifact := filepath.Join(t.TempDir(), "Firefox.pkg")
	require.NoError(t, os.WriteFile(artifact, []byte("payload"), 0o644))
	store := NewRecordStoreFileAdapter(dir)

	packages, err := store.Handler(types.RecordTypePackages)
	require.NoError(t, err)
	require.NoError(t, packages.Upload(t.Context(), "5", artifact))
	data, err := os.ReadFile(filepath.Join(dir, string(types.RecordTypePackages), "5.files", "Firefox.pkg"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = packages.Upload(t.Context(), "6", artifact)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	scripts, err := store.Handler(types.RecordTypeScripts)
	require.NoError(t, err)
	err = scripts.Upload(t.Context(), "5", artifact)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestRecordStoreFileRejectsUnsafeIDs(t *testing.T) {
	handler, err := NewRecordStoreFileAdapter(t.TempDir()).Handler(types.RecordTypePolicies)
	require.NoError(t, err)
	for _, id := range []string{"", " 1", "../1", "a/b", ".."} {
		_, err := handler.Get(t.Context(), id)
		require.Error(t, err, id)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err), id)
	}
}

func TestRecordStoreFileCapabilities(t *testing.T) {
	handler, err := NewRecordStoreFileAdapter(t.TempDir()).Handler(types.RecordTypePatchPolicies)
	require.NoError(t, err)
	_, err = handler.Create(t.Context(), types.RecordDetail{"name": "x"})
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))

	_, err = RecordStoreFileAdapter{}.Handler(types.RecordTypePolicies)
	require.Error(t, err)
}
