package headtrack

import (
	"github.com/bft-labs/headtrack/internal/ports"
	"github.com/bft-labs/headtrack/pkg/log"
	"github.com/bft-labs/headtrack/pkg/ovr"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Sink delivers frame batches. The CLI builds the mqtt, influx and stdout
// sinks and passes them in with WithSink.
type Sink = ports.PoseSender

// Option configures optional behavior of a Tracker.
type Option func(*options)

type options struct {
	sdk          ovr.SDK
	sink         Sink
	httpClient   HTTPClient
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
}

// WithSDK uses sdk instead of opening Config.Driver from the registry.
func WithSDK(sdk ovr.SDK) Option {
	return func(o *options) {
		o.sdk = sdk
	}
}

// WithSink replaces the default HTTP sink.
func WithSink(sink Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithHTTPClient sets the client used by the default HTTP sink.
// If not provided, a client with Config.HTTPTimeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for tracker events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the tracker starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
