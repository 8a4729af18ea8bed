package platform

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/blinknote/pkg/adapters/local"
	"github.com/aretw0/blinknote/pkg/adapters/memory"
	"github.com/aretw0/blinknote/pkg/adapters/shared"
	"github.com/aretw0/blinknote/pkg/core"
)

// New creates a Service over the backend selected by the options.
//
//	svc, err := blinknote.New(blinknote.WithSharedDir("~/.blinknote"))
//
// The backend is chosen once, here: an injected backend wins, then a forced
// adapter, then the probe (shared when its directory is usable, local otherwise).
func New(opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	backend, err := openBackend(o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{core.WithServiceLogger(o.logger)}
	if o.clock != nil {
		svcOpts = append(svcOpts, core.WithClock(o.clock))
	}
	if o.idGenerator != nil {
		svcOpts = append(svcOpts, core.WithIDGenerator(o.idGenerator))
	}
	return core.NewService(core.NewStore(backend, o.key), svcOpts...), nil
}

// NewSession creates a Service and a Session over it.
// Call Start on the session to follow changes made by other instances.
func NewSession(opts ...Option) (*core.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	svc, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return core.NewSession(svc, o.logger), nil
}

func openBackend(o *options) (core.Backend, error) {
	if o.backend != nil {
		return o.backend, nil
	}

	switch o.adapter {
	case AdapterShared:
		return openShared(o)
	case AdapterLocal:
		return openLocal(o)
	case AdapterMemory:
		return memory.New(), nil
	case AdapterAuto, "":
		if err := ProbeShared(o.sharedDir); err != nil {
			o.logger.Debug("shared backend unavailable, using local fallback", "reason", err)
			return openLocal(o)
		}
		return openShared(o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

func openShared(o *options) (core.Backend, error) {
	store, err := shared.New(shared.Config{
		Dir:          o.sharedDir,
		Logger:       o.logger,
		Debounce:     o.debounce,
		ErrorHandler: o.errorHandler,
	})
	if err != nil {
		return nil, err
	}
	o.logger.Info("using shared backend", "dir", store.Dir())
	return store, nil
}

func openLocal(o *options) (core.Backend, error) {
	path := o.localPath
	if path == "" {
		var err error
		if path, err = DefaultLocalPath(); err != nil {
			return nil, err
		}
	}
	store, err := local.Open(local.Config{Path: path, Logger: o.logger})
	if err != nil {
		return nil, err
	}
	o.logger.Info("using local backend", "path", path)
	return store, nil
}
