package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "screen-inventory-service"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx                 context.Context
	meter               metric.Meter
	requests            metric.Int64Counter
	requestLatencyMs    metric.Float64Histogram
	batches             metric.Int64Counter
	records             metric.Int64Counter
	validationIssues    metric.Int64Counter
	fetches             metric.Int64Counter
	fetchErrors         metric.Int64Counter
	fetchLatencyMs      metric.Float64Histogram
	rateLimitHits       metric.Int64Counter
	retryAfterMs        metric.Float64Histogram
	sourceFailures      metric.Int64Counter
	sweeps              metric.Int64Counter
	evicted             metric.Int64Counter
	sweepLatencyMs      metric.Float64Histogram
	subscriberErrors    metric.Int64Counter
	integrityViolations metric.Int64Counter
	pollerCycles        metric.Int64Counter
	pollerErrors        metric.Int64Counter
	pollerLatencyMs     metric.Float64Histogram
	notifications       metric.Int64Counter
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(serviceName)
	o := &otelInstruments{ctx: context.Background(), meter: meter}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
	}{
		{&o.requests, "http_requests_total"},
		{&o.batches, "inventory_batches_total"},
		{&o.records, "inventory_records_total"},
		{&o.validationIssues, "inventory_validation_issues_total"},
		{&o.fetches, "source_fetches_total"},
		{&o.fetchErrors, "source_fetch_errors_total"},
		{&o.rateLimitHits, "source_rate_limit_hits_total"},
		{&o.sourceFailures, "source_failures_total"},
		{&o.sweeps, "inventory_sweeps_total"},
		{&o.evicted, "inventory_evicted_total"},
		{&o.subscriberErrors, "inventory_subscriber_errors_total"},
		{&o.integrityViolations, "inventory_integrity_violations_total"},
		{&o.pollerCycles, "poller_cycles_total"},
		{&o.pollerErrors, "poller_errors_total"},
		{&o.notifications, "inventory_notifications_total"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
	}{
		{&o.requestLatencyMs, "http_request_duration_ms"},
		{&o.fetchLatencyMs, "source_fetch_duration_ms"},
		{&o.retryAfterMs, "source_retry_after_ms"},
		{&o.sweepLatencyMs, "inventory_sweep_duration_ms"},
		{&o.pollerLatencyMs, "poller_cycle_duration_ms"},
	}
	for _, h := range histograms {
		hist, err := meter.Float64Histogram(h.name)
		if err != nil {
			return nil, err
		}
		*h.dst = hist
	}

	return o, nil
}

func (o *otelInstruments) observeInventory(counts InventoryCounts) error {
	gauge, err := o.meter.Int64ObservableGauge("inventory_screens")
	if err != nil {
		return err
	}
	_, err = o.meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		external, local := counts()
		obs.ObserveInt64(gauge, int64(external), metric.WithAttributes(attribute.String(AttrOrigin, "external")))
		obs.ObserveInt64(gauge, int64(local), metric.WithAttributes(attribute.String(AttrOrigin, "local")))
		return nil
	}, gauge)
	return err
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordBatch(source string, converted, failed, warnings, errs int) {
	if o == nil {
		return
	}
	src := attribute.String(AttrSource, source)
	o.recordCounter(o.batches, 1, src)
	o.recordCounter(o.records, int64(converted), src, attribute.String(AttrStatus, "converted"))
	o.recordCounter(o.records, int64(failed), src, attribute.String(AttrStatus, "failed"))
	o.recordCounter(o.validationIssues, int64(warnings), src, attribute.String(AttrKind, "warning"))
	o.recordCounter(o.validationIssues, int64(errs), src, attribute.String(AttrKind, "error"))
}

func (o *otelInstruments) recordFetch(source string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrSource, source)}
	o.recordCounter(o.fetches, 1, attrs...)
	o.recordHistogram(o.fetchLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.fetchErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordRateLimit(source string, retryAfter time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrSource, source)}
	o.recordCounter(o.rateLimitHits, 1, attrs...)
	if retryAfter > 0 {
		o.recordHistogram(o.retryAfterMs, float64(retryAfter.Milliseconds()), attrs...)
	}
}

func (o *otelInstruments) recordSourceFailure(source, class, fallback string) {
	if o == nil {
		return
	}
	o.recordCounter(o.sourceFailures, 1,
		attribute.String(AttrSource, source),
		attribute.String(AttrClass, class),
		attribute.String(AttrFallback, fallback),
	)
}

func (o *otelInstruments) recordSweep(duration time.Duration, evicted int) {
	if o == nil {
		return
	}
	o.recordCounter(o.sweeps, 1)
	o.recordCounter(o.evicted, int64(evicted))
	o.recordHistogram(o.sweepLatencyMs, float64(duration.Milliseconds()))
}

func (o *otelInstruments) recordPoller(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.recordCounter(o.pollerCycles, 1)
	o.recordHistogram(o.pollerLatencyMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(o.pollerErrors, 1)
	}
}

func (o *otelInstruments) recordNotification(kind, status string) {
	o.recordCounter(o.notifications, 1,
		attribute.String(AttrKind, kind),
		attribute.String(AttrStatus, status),
	)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil || value <= 0 {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
