package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/config"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/navigation"
	testhelpers "github.com/polkiloo/marketclient/internal/test"
	"github.com/polkiloo/marketclient/internal/worker"
)

type lifecycleFixture struct {
	facadeFixture
	bridge *navigation.Bridge
	worker *worker.LocationRefresher
}

func newLifecycleFixture() lifecycleFixture {
	fix := newFacadeFixture()
	logger := testhelpers.DiscardLogger()
	return lifecycleFixture{
		facadeFixture: fix,
		bridge:        navigation.NewBridge(fix.facade.sessions, fix.relay, logger),
		worker:        worker.NewLocationRefresher(fix.facade.locations, 0, logger),
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{BridgeAddress: "127.0.0.1:9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected address 127.0.0.1:9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewLocationRefresherUsesConfig(t *testing.T) {
	fix := newFacadeFixture()
	refresher := newLocationRefresher(workerParams{
		Locations: fix.facade.locations,
		Config:    &config.Config{LocationRefreshInterval: time.Minute},
		Logger:    testhelpers.DiscardLogger(),
	})
	if refresher == nil {
		t.Fatal("expected refresher instance")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	fix := newLifecycleFixture()
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     testhelpers.DiscardLogger(),
		Facade:     fix.facade,
		Bridge:     fix.bridge,
		Server:     server,
		Worker:     fix.worker,
		Config:     &config.Config{ShutdownTimeout: 100 * time.Millisecond},
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	deadline := time.After(time.Second)
	for fix.relay.Current() != model.TargetAuthEntry {
		select {
		case <-deadline:
			t.Fatalf("expected bootstrap to route to AUTH_ENTRY, got %s", fix.relay.Current())
		case <-time.After(5 * time.Millisecond):
		}
	}

	done := make(chan error, 1)
	go func() { done <- recorder.Stop(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("on stop failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}

	if fix.facade.Location().Current == nil {
		t.Fatal("expected initial location to be resolved")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	fix := newLifecycleFixture()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     testhelpers.DiscardLogger(),
		Facade:     fix.facade,
		Bridge:     fix.bridge,
		Server:     &http.Server{Addr: "bad addr"},
		Worker:     fix.worker,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = recorder.Stop(context.Background())
}
