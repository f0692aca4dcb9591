package app

import (
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"mdmctl/internal/adapters"
	"mdmctl/internal/core"
	"mdmctl/internal/ports"
	"mdmctl/internal/types"
)

type Service struct {
	Store    ports.RecordStorePort
	Prompt   ports.PromptPort
	Payloads ports.PayloadReaderPort
}

// ServiceConfig selects and configures the record store backend.
type ServiceConfig struct {
	Backend      string
	ServerURL    string
	Username     string
	Password     string
	RecordsDir   string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	RateLimit    float64
	// PromptIn and PromptOut carry delete confirmations.
	PromptIn  io.Reader
	PromptOut io.Writer
}

func NewService(cfg ServiceConfig) (Service, error) {
	backend := types.StoreBackend(strings.ToLower(strings.TrimSpace(cfg.Backend)))
	if backend == "" {
		backend = types.StoreBackendHTTP
	}
	var store ports.RecordStorePort
	switch backend {
	case types.StoreBackendHTTP:
		if strings.TrimSpace(cfg.ServerURL) == "" {
			return Service{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("server url is required for http backend")
		}
		store = adapters.NewRecordStoreHTTPAdapter(adapters.RecordStoreHTTPConfig{
			BaseURL:      cfg.ServerURL,
			Username:     cfg.Username,
			Password:     cfg.Password,
			TimeoutSec:   cfg.TimeoutSec,
			Retries:      cfg.Retries,
			RetryDelayMs: cfg.RetryDelayMs,
			RateLimit:    cfg.RateLimit,
		})
	case types.StoreBackendFile:
		if strings.TrimSpace(cfg.RecordsDir) == "" {
			return Service{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("records directory is required for file backend")
		}
		store = adapters.NewRecordStoreFileAdapter(cfg.RecordsDir)
	default:
		return Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported record store backend: " + string(backend))
	}
	return Service{
		Store:    store,
		Prompt:   adapters.NewTerminalPromptAdapter(cfg.PromptIn, cfg.PromptOut),
		Payloads: adapters.NewPayloadFileAdapter(cfg.PromptIn),
	}, nil
}

func (s Service) handler(recordType types.RecordType) (ports.RecordHandlerPort, error) {
	if s.Store == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("record store is not configured")
	}
	return s.Store.Handler(recordType)
}

func (s Service) reconciler() (core.PatchReconciler, error) {
	titles, err := s.handler(types.RecordTypePatchSoftwareTitles)
	if err != nil {
		return core.PatchReconciler{}, err
	}
	policies, err := s.handler(types.RecordTypePatchPolicies)
	if err != nil {
		return core.PatchReconciler{}, err
	}
	return core.NewPatchReconciler(titles, policies), nil
}
