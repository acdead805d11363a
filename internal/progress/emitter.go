package progress

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/ahmetkaya/modhost/internal/ctxlog"
)

// EmitterConfig configures the socket.io progress gateway connection.
type EmitterConfig struct {
	URL       string
	Namespace string
	Timeout   time.Duration
}

// Emitter publishes progress events to a socket.io collector. It holds one
// websocket connection for the lifetime of the host.
type Emitter struct {
	io        *socket.Socket
	manager   *socket.Manager
	connected atomic.Bool
}

// Connect dials the collector and waits for the initial connection (or the
// configured timeout). A host without a reachable collector is considered
// misconfigured, so this fails instead of buffering silently.
func Connect(ctx context.Context, cfg EmitterConfig) (*Emitter, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)
	logger.Debug("Connecting to progress collector.")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress collector URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	e := &Emitter{}
	e.manager = socket.NewManager(baseURL, opts)
	e.io = e.manager.Socket(cfg.Namespace, opts)

	done := make(chan error, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.io.On(types.EventName("connect"), func(...any) {
		e.connected.Store(true)
		logger.Info("Connected to progress collector.", "sid", e.io.Id())
		done <- nil
	})
	e.io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- err
				return
			}
		}
		done <- fmt.Errorf("progress collector connection failed")
	})

	e.io.Connect()

	select {
	case <-opCtx.Done():
		e.io.Disconnect()
		return nil, fmt.Errorf("timed out connecting to progress collector %s", cfg.URL)
	case err := <-done:
		if err != nil {
			e.io.Disconnect()
			return nil, err
		}
		return e, nil
	}
}

// Publish implements Sink. Events emitted before the connection is
// established are dropped; progress is advisory, not durable.
func (e *Emitter) Publish(event string, data map[string]any) {
	if !e.connected.Load() {
		return
	}
	e.io.Emit(event, data)
}

// Close disconnects from the collector.
func (e *Emitter) Close() {
	e.connected.Store(false)
	e.io.Disconnect()
}
