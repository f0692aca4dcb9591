package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"mdmctl/internal/core"
	"mdmctl/internal/ports"
	"mdmctl/internal/shared"
	"mdmctl/internal/types"
)

type RecordStoreHTTPAdapter struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	// Retries counts attempts after the first one; zero disables retrying.
	Retries    int
	RetryDelay time.Duration
	// Limiter is shared by every handler the store hands out; nil means
	// requests are not throttled.
	Limiter *rate.Limiter
}

const apiRoot = "JSSResource"
const defaultRecordTimeout = 60 * time.Second
const defaultRecordRetries = 3
const defaultRecordRetryDelay = 200 * time.Millisecond
const maxRecordRetryDelay = 2 * time.Second

type RecordStoreHTTPConfig struct {
	BaseURL      string
	Username     string
	Password     string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	// RateLimit caps requests per second; zero disables throttling.
	RateLimit float64
}

func NewRecordStoreHTTPAdapter(cfg RecordStoreHTTPConfig) RecordStoreHTTPAdapter {
	config := normalizeHTTPConfig(cfg.TimeoutSec, cfg.Retries, cfg.RetryDelayMs)
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return RecordStoreHTTPAdapter{
		BaseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		Username:   cfg.Username,
		Password:   cfg.Password,
		Timeout:    config.timeout,
		Retries:    config.retries,
		RetryDelay: config.baseDelay,
		Limiter:    limiter,
	}
}

func (a RecordStoreHTTPAdapter) Handler(recordType types.RecordType) (ports.RecordHandlerPort, error) {
	if a.BaseURL == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("server url is empty")
	}
	endpoint, err := lookupEndpoint(recordType)
	if err != nil {
		return nil, err
	}
	return recordHandlerHTTP{store: a, recordType: recordType, endpoint: endpoint}, nil
}

type recordHandlerHTTP struct {
	store      RecordStoreHTTPAdapter
	recordType types.RecordType
	endpoint   recordEndpoint
}

func (h recordHandlerHTTP) Type() types.RecordType {
	return h.recordType
}

func (h recordHandlerHTTP) Capabilities() types.RecordCapabilities {
	return h.endpoint.capabilities
}

func (h recordHandlerHTTP) List(ctx context.Context, filters ...types.ListFilter) ([]types.RecordRef, error) {
	segments := []string{h.endpoint.collection}
	for _, filter := range filters {
		sub, ok := h.endpoint.filters[filter.Path]
		if !ok {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("%s cannot be listed by %s", h.recordType, filter.Path))
		}
		segments = append(segments, sub, url.PathEscape(filter.Value))
	}
	body, err := h.store.do(ctx, http.MethodGet, h.store.resourceURL(segments...), nil, "")
	if err != nil {
		return nil, err
	}
	payload, err := decodeRecordBody(body)
	if err != nil {
		return nil, err
	}
	return listRefs(payload, h.endpoint), nil
}

func (h recordHandlerHTTP) Get(ctx context.Context, id string) (types.RecordDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("record id is empty")
	}
	body, err := h.store.do(ctx, http.MethodGet, h.itemURL(id), nil, "")
	if err != nil {
		return nil, err
	}
	payload, err := decodeRecordBody(body)
	if err != nil {
		return nil, err
	}
	return unwrapItem(payload, h.endpoint.itemKey), nil
}

func (h recordHandlerHTTP) Create(ctx context.Context, payload types.RecordDetail) (string, error) {
	if !h.endpoint.capabilities.Create {
		return "", capabilityError(h.recordType, "create")
	}
	data, err := h.encodeItem(payload)
	if err != nil {
		return "", err
	}
	body, err := h.store.do(ctx, http.MethodPost, h.itemURL("0"), data, "application/json")
	if err != nil {
		return "", err
	}
	created, err := decodeRecordBody(body)
	if err != nil {
		return "", err
	}
	id := recordID(unwrapItem(created, h.endpoint.itemKey))
	if id == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("create %s returned no id", h.recordType))
	}
	return id, nil
}

func (h recordHandlerHTTP) Update(ctx context.Context, id string, payload types.RecordDetail) error {
	if !h.endpoint.capabilities.Update {
		return capabilityError(h.recordType, "update")
	}
	data, err := h.encodeItem(payload)
	if err != nil {
		return err
	}
	_, err = h.store.do(ctx, http.MethodPut, h.itemURL(id), data, "application/json")
	return err
}

func (h recordHandlerHTTP) Delete(ctx context.Context, id string) error {
	if !h.endpoint.capabilities.Delete {
		return capabilityError(h.recordType, "delete")
	}
	_, err := h.store.do(ctx, http.MethodDelete, h.itemURL(id), nil, "")
	return err
}

func (h recordHandlerHTTP) Upload(ctx context.Context, id string, path string) error {
	if !h.endpoint.capabilities.Upload {
		return capabilityError(h.recordType, "upload")
	}
	body, contentType, err := multipartFile(path)
	if err != nil {
		return err
	}
	uploadURL := h.store.resourceURL("fileuploads", h.endpoint.uploadResource, "id", url.PathEscape(id))
	_, err = h.store.do(ctx, http.MethodPost, uploadURL, body, contentType)
	return err
}

func (h recordHandlerHTTP) itemURL(id string) string {
	return h.store.resourceURL(h.endpoint.collection, "id", url.PathEscape(strings.TrimSpace(id)))
}

func (h recordHandlerHTTP) encodeItem(payload types.RecordDetail) ([]byte, error) {
	data, err := json.Marshal(map[string]any{h.endpoint.itemKey: payload})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to encode %s payload", h.recordType)).
			WithCause(err)
	}
	return data, nil
}

func (a RecordStoreHTTPAdapter) resourceURL(segments ...string) string {
	return a.BaseURL + "/" + apiRoot + "/" + strings.Join(segments, "/")
}

// do issues one request, retrying transport failures and 5xx/429
// responses for idempotent methods.
func (a RecordStoreHTTPAdapter) do(ctx context.Context, method string, target string, body []byte, contentType string) ([]byte, error) {
	attempts := a.Retries + 1
	if method == http.MethodPost || attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		data, retry, err := a.doOnce(ctx, method, target, body, contentType)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || attempt == attempts-1 {
			return nil, err
		}
		log.Debug().
			Str("method", method).
			Str("url", target).
			Int("attempt", attempt+1).
			Err(err).
			Msg("retrying record request")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.retryDelay(attempt)):
		}
	}
	return nil, lastErr
}

func (a RecordStoreHTTPAdapter) doOnce(ctx context.Context, method string, target string, body []byte, contentType string) ([]byte, bool, error) {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create record request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	a.applyBasicAuth(req)
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("%s request failed", strings.ToLower(method))).
			WithCause(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read record response").
			WithCause(err)
	}
	log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Msg("record request")
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, false, nil
	}
	cause := shared.HTTPStatusError(resp.StatusCode, target, string(data))
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("record not found").
			WithCause(cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("server rejected credentials").
			WithCause(cause)
	}
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return nil, retry, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s request failed", strings.ToLower(method))).
		WithCause(cause)
}

func (a RecordStoreHTTPAdapter) applyBasicAuth(req *http.Request) {
	if strings.TrimSpace(a.Password) == "" {
		return
	}
	user := strings.TrimSpace(a.Username)
	if user == "" {
		user = "api"
	}
	req.SetBasicAuth(user, a.Password)
}

func (a RecordStoreHTTPAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxRecordRetryDelay {
		delay = maxRecordRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultRecordTimeout
	}
	retryCount := retries
	if retryCount < 0 {
		retryCount = defaultRecordRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultRecordRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

func decodeRecordBody(body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse record response").
			WithCause(err)
	}
	switch typed := payload.(type) {
	case map[string]any:
		return typed, nil
	case []any:
		return map[string]any{"": typed}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unexpected record response: %T", payload))
	}
}

// listRefs reads id/name pairs out of a listing. Servers wrap the array
// under the collection key, and some send a lone object instead of a
// one-element array.
func listRefs(payload map[string]any, endpoint recordEndpoint) []types.RecordRef {
	raw, ok := payload[endpoint.listKey]
	if !ok {
		raw = payload[""]
	}
	var items []any
	switch typed := raw.(type) {
	case []any:
		items = typed
	case map[string]any:
		if inner, ok := typed[endpoint.itemKey]; ok {
			if list, ok := inner.([]any); ok {
				items = list
			} else {
				items = []any{inner}
			}
		} else {
			items = []any{typed}
		}
	}
	refs := make([]types.RecordRef, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := recordID(entry)
		if id == "" {
			continue
		}
		refs = append(refs, types.RecordRef{ID: id, Name: core.RecordName(entry)})
	}
	return refs
}

func unwrapItem(payload map[string]any, itemKey string) types.RecordDetail {
	if inner, ok := payload[itemKey].(map[string]any); ok {
		return inner
	}
	return payload
}

func recordID(detail map[string]any) string {
	for _, path := range [][]string{{"id"}, {"general", "id"}} {
		result, err := core.Resolve(detail, path)
		if err == nil && result.IsScalar() && result.Value != nil {
			return strings.TrimSpace(result.Text())
		}
	}
	return ""
}

func multipartFile(path string) ([]byte, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open upload file").
			WithCause(err)
	}
	defer file.Close()
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	part, err := writer.CreateFormFile("name", filepath.Base(path))
	if err != nil {
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build upload body").
			WithCause(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read upload file").
			WithCause(err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to build upload body").
			WithCause(err)
	}
	return buffer.Bytes(), writer.FormDataContentType(), nil
}

var _ ports.RecordStorePort = RecordStoreHTTPAdapter{}
var _ ports.RecordHandlerPort = recordHandlerHTTP{}
