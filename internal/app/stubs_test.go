package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"mdmctl/internal/core"
	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

// stubStore satisfies ports.RecordStorePort with in-memory handlers.
type stubStore struct {
	handlers map[types.RecordType]*stubHandler
}

func newStubStore() *stubStore {
	return &stubStore{handlers: map[types.RecordType]*stubHandler{}}
}

func (s *stubStore) Handler(recordType types.RecordType) (ports.RecordHandlerPort, error) {
	handler, ok := s.handlers[recordType]
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown record type: " + string(recordType))
	}
	return handler, nil
}

func (s *stubStore) add(t *testing.T, recordType types.RecordType, id string, name string, body string) *stubHandler {
	t.Helper()
	handler, ok := s.handlers[recordType]
	if !ok {
		handler = &stubHandler{
			recordType:   recordType,
			details:      map[string]types.RecordDetail{},
			capabilities: types.RecordCapabilities{Create: true, Update: true, Delete: true, Upload: true},
		}
		s.handlers[recordType] = handler
	}
	detail := types.RecordDetail{}
	if body != "" {
		decoder := json.NewDecoder(strings.NewReader(body))
		decoder.UseNumber()
		require.NoError(t, decoder.Decode(&detail))
	}
	handler.refs = append(handler.refs, types.RecordRef{ID: id, Name: name})
	handler.details[id] = detail
	return handler
}

// stubHandler records every mutating call it receives.
type stubHandler struct {
	recordType   types.RecordType
	capabilities types.RecordCapabilities
	refs         []types.RecordRef
	details      map[string]types.RecordDetail

	gets      []string
	created   []types.RecordDetail
	updated   map[string]types.RecordDetail
	deleted   []string
	uploaded  []string
	deleteErr error
}

func (h *stubHandler) Type() types.RecordType { return h.recordType }

func (h *stubHandler) Capabilities() types.RecordCapabilities { return h.capabilities }

func (h *stubHandler) List(_ context.Context, filters ...types.ListFilter) ([]types.RecordRef, error) {
	out := make([]types.RecordRef, 0, len(h.refs))
	for _, ref := range h.refs {
		keep := true
		for _, filter := range filters {
			result, err := core.Resolve(h.details[ref.ID], core.ParsePath(filter.Path))
			if err != nil || result.Text() != filter.Value {
				keep = false
			}
		}
		if keep {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (h *stubHandler) Get(_ context.Context, id string) (types.RecordDetail, error) {
	h.gets = append(h.gets, id)
	detail, ok := h.details[id]
	if !ok {
		return nil, errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("record not found")
	}
	return cloneDetail(detail), nil
}

func (h *stubHandler) Create(_ context.Context, payload types.RecordDetail) (string, error) {
	h.created = append(h.created, payload)
	return strconv.Itoa(100 + len(h.created)), nil
}

func (h *stubHandler) Update(_ context.Context, id string, payload types.RecordDetail) error {
	if h.updated == nil {
		h.updated = map[string]types.RecordDetail{}
	}
	h.updated[id] = payload
	return nil
}

func (h *stubHandler) Delete(_ context.Context, id string) error {
	if h.deleteErr != nil {
		return h.deleteErr
	}
	h.deleted = append(h.deleted, id)
	return nil
}

func (h *stubHandler) Upload(_ context.Context, id string, _ string) error {
	h.uploaded = append(h.uploaded, id)
	return nil
}

// stubPrompt answers confirmations from a script and remembers the
// questions it was asked.
type stubPrompt struct {
	answers   []bool
	questions []string
	err       error
}

func (p *stubPrompt) Confirm(_ context.Context, question string) (bool, error) {
	p.questions = append(p.questions, question)
	if p.err != nil {
		return false, p.err
	}
	if len(p.answers) == 0 {
		return false, errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("no scripted answer")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

type stubPayloads struct {
	payload types.RecordDetail
	err     error
}

func (p stubPayloads) ReadPayload(_ string) (types.RecordDetail, error) {
	if p.err != nil {
		return nil, p.err
	}
	return cloneDetail(p.payload), nil
}

func seedPolicies(t *testing.T, store *stubStore) *stubHandler {
	t.Helper()
	store.add(t, types.RecordTypePolicies, "1", "Alpha", `{"general":{"id":1,"name":"Alpha","enabled":true,"category":{"name":"Browsers"}}}`)
	store.add(t, types.RecordTypePolicies, "2", "Beta", `{"general":{"id":2,"name":"Beta","enabled":false,"category":{"name":"Browsers"}}}`)
	return store.add(t, types.RecordTypePolicies, "3", "Gamma", `{"general":{"id":3,"name":"Gamma","enabled":true,"category":{"name":"Utilities"}}}`)
}

func seedPatch(t *testing.T, store *stubStore) {
	t.Helper()
	store.add(t, types.RecordTypePatchSoftwareTitles, "4", "Firefox", `{"id":4,"name":"Firefox","versions":{"version":[
		{"software_version":"121.0","package":{"name":"Firefox-121.0.pkg"}},
		{"software_version":"9.1"},
		{"software_version":"120.0.1","package":{"name":"Firefox-120.pkg"}}
	]}}`)
	store.add(t, types.RecordTypePatchSoftwareTitles, "5", "Zoom", `{"id":5,"name":"Zoom","versions":{"version":
		{"software_version":"5.17.0","package":{"name":"Zoom.pkg"}}
	}}`)
	store.add(t, types.RecordTypePatchPolicies, "20", "Firefox - Testing", `{"general":{"name":"Firefox - Testing","target_version":"121.0","software_title_configuration_id":4}}`)
	store.add(t, types.RecordTypePatchPolicies, "21", "Firefox - Production", `{"general":{"name":"Firefox - Production","target_version":"120.0.1","software_title_configuration_id":4}}`)
	store.add(t, types.RecordTypePatchPolicies, "22", "Zoom - Production", `{"general":{"name":"Zoom - Production","target_version":"5.17.0","software_title_configuration_id":5}}`)
}
