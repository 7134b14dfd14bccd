package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricExporter records counters and histograms through an OTel meter provider.
type MetricExporter struct {
	meterProvider    *sdkmetric.MeterProvider
	meter            metric.Meter
	reader           sdkmetric.Reader
	serviceName      string
	serviceNamespace string
	serviceVersion   string
	otlpEndpoint     string
	otlpGRPCEndpoint string
	environment      string
	exportInterval   time.Duration

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// Option is a function that configures a MetricExporter
type Option func(*MetricExporter)

func WithServiceName(name string) Option {
	return func(mc *MetricExporter) {
		mc.serviceName = name
	}
}

func WithServiceNamespace(namespace string) Option {
	return func(mc *MetricExporter) {
		mc.serviceNamespace = namespace
	}
}

func WithServiceVersion(version string) Option {
	return func(mc *MetricExporter) {
		mc.serviceVersion = version
	}
}

// WithOTLPEndpoint sets the OTLP HTTP endpoint
func WithOTLPEndpoint(endpoint string) Option {
	return func(mc *MetricExporter) {
		mc.otlpEndpoint = endpoint
	}
}

// WithOTLPGRPCEndpoint sets the OTLP gRPC endpoint. It takes precedence over HTTP.
func WithOTLPGRPCEndpoint(endpoint string) Option {
	return func(mc *MetricExporter) {
		mc.otlpGRPCEndpoint = endpoint
	}
}

func WithEnvironment(env string) Option {
	return func(mc *MetricExporter) {
		mc.environment = env
	}
}

func WithExportInterval(interval time.Duration) Option {
	return func(mc *MetricExporter) {
		mc.exportInterval = interval
	}
}

// WithReader replaces the OTLP periodic exporter with the given reader.
func WithReader(reader sdkmetric.Reader) Option {
	return func(mc *MetricExporter) {
		mc.reader = reader
	}
}

func defaultConfig() *MetricExporter {
	return &MetricExporter{
		serviceName:      "currencyd",
		serviceNamespace: "default",
		serviceVersion:   "1.0.0",
		otlpEndpoint:     "localhost:4318",
		environment:      "development",
		exportInterval:   10 * time.Second,
		counters:         make(map[string]metric.Int64Counter),
		histograms:       make(map[string]metric.Float64Histogram),
	}
}

// NewMetricExporter creates a new metric exporter instance. The returned func shuts the provider down.
func NewMetricExporter(opts ...Option) (*MetricExporter, func(), error) {
	mc := defaultConfig()
	for _, opt := range opts {
		opt(mc)
	}

	if mc.reader == nil && mc.otlpGRPCEndpoint == "" && mc.otlpEndpoint == "" {
		return nil, nil, fmt.Errorf("OTLP HTTP endpoint is required when gRPC endpoint is not configured")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(mc.serviceName),
			semconv.ServiceNamespace(mc.serviceNamespace),
			semconv.ServiceVersion(mc.serviceVersion),
			semconv.DeploymentEnvironment(mc.environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mc.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		if mc.otlpGRPCEndpoint != "" {
			exporter, err = otlpmetricgrpc.New(context.Background(),
				otlpmetricgrpc.WithEndpoint(mc.otlpGRPCEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
			}
		} else {
			exporter, err = otlpmetrichttp.New(context.Background(),
				otlpmetrichttp.WithEndpoint(mc.otlpEndpoint),
				otlpmetrichttp.WithInsecure(),
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
			}
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mc.exportInterval))
	}

	mc.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mc.meter = mc.meterProvider.Meter(mc.serviceName)

	return mc, func() {
		_ = mc.meterProvider.Shutdown(context.Background())
	}, nil
}

// Close gracefully shuts down the metric exporter
func (mc *MetricExporter) Close(ctx context.Context) error {
	return mc.meterProvider.Shutdown(ctx)
}

func (mc *MetricExporter) counter(name, description, unit string) (metric.Int64Counter, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if c, ok := mc.counters[name]; ok {
		return c, nil
	}
	c, err := mc.meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, err
	}
	mc.counters[name] = c
	return c, nil
}

func (mc *MetricExporter) histogram(name, description, unit string) (metric.Float64Histogram, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if h, ok := mc.histograms[name]; ok {
		return h, nil
	}
	h, err := mc.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, err
	}
	mc.histograms[name] = h
	return h, nil
}

// RecordCounter records a counter metric
func (mc *MetricExporter) RecordCounter(ctx context.Context, name, description, unit string, value int64, attributes map[string]string) error {
	counter, err := mc.counter(name, description, unit)
	if err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	counter.Add(ctx, value, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

// RecordHistogram records a histogram metric
func (mc *MetricExporter) RecordHistogram(ctx context.Context, name, description, unit string, value float64, attributes map[string]string) error {
	histogram, err := mc.histogram(name, description, unit)
	if err != nil {
		return fmt.Errorf("failed to create histogram: %w", err)
	}
	histogram.Record(ctx, value, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

func toAttributes(attributes map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
