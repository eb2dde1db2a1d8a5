//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package otel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	api "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/metric/unit"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregation"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	otelCfg "github.com/frankgh/pxf/pkg/logging/otel/config"
)

const (
	MeterName         = "pxf-gateway-meter"
	PXF_METRIC_PREFIX = "pxf.gateway."

	Profile = "profile"
	Status  = "status"
	Kind    = "kind"
)

// OTEL status
const (
	StatusSuccess string = "SUCCESS"
	StatusError   string = "ERROR"
)

var (
	meterProvider *metric.MeterProvider
	recorder      *Recorder
	initOnce      sync.Once
)

// Recorder owns the instruments of the gateway.
type Recorder struct {
	decodeLatency syncint64.Histogram
	decodeCount   syncint64.Counter
	decodeErrors  syncint64.Counter
	connections   syncint64.UpDownCounter
}

func PopulateMetricNamePrefix(name string) string {
	return PXF_METRIC_PREFIX + name
}

func NewRecorder(meter api.Meter) (r *Recorder, err error) {
	r = &Recorder{}
	provider := meter.SyncInt64()
	if r.decodeLatency, err = provider.Histogram(
		PopulateMetricNamePrefix("decode_latency"),
		instrument.WithDescription("Histogram for request decoding"),
		instrument.WithUnit(unit.Milliseconds),
	); err != nil {
		return nil, err
	}
	if r.decodeCount, err = provider.Counter(
		PopulateMetricNamePrefix("decode"),
		instrument.WithDescription("Requests decoded"),
	); err != nil {
		return nil, err
	}
	if r.decodeErrors, err = provider.Counter(
		PopulateMetricNamePrefix("decode_error"),
		instrument.WithDescription("Requests rejected, by error kind"),
	); err != nil {
		return nil, err
	}
	if r.connections, err = provider.UpDownCounter(
		PopulateMetricNamePrefix("connections"),
		instrument.WithDescription("Open client connections"),
	); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordDecode records one decode. kind is the error kind, empty on success.
func (r *Recorder) RecordDecode(ctx context.Context, profile string, kind string, latency time.Duration) {
	status := StatusSuccess
	if kind != "" {
		status = StatusError
	}
	labels := []attribute.KeyValue{
		attribute.String(Profile, profile),
		attribute.String(Status, status),
	}
	r.decodeLatency.Record(ctx, latency.Milliseconds(), labels...)
	r.decodeCount.Add(ctx, 1, labels...)
	if kind != "" {
		r.decodeErrors.Add(ctx, 1, attribute.String(Kind, kind))
	}
}

func (r *Recorder) AddConnections(ctx context.Context, delta int64) {
	r.connections.Add(ctx, delta)
}

// Initialize is the initmgr entry point; the argument is a *config.Config.
func Initialize(args ...interface{}) (err error) {
	if len(args) < 1 {
		return errors.New("otel config argument expected")
	}
	c, ok := args[0].(*otelCfg.Config)
	if !ok {
		return errors.New("wrong argument type")
	}
	if err = c.Validate(); err != nil {
		return
	}
	c.Dump()
	if c.Enabled {
		err = InitMetricProvider(c)
	}
	return
}

func Finalize() {
	if meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			glog.Warningf("otel shutdown: %s", err)
		}
	}
}

func InitMetricProvider(cfg *otelCfg.Config) (err error) {
	initOnce.Do(func() {
		ctx := context.Background()
		var exp metric.Exporter
		if exp, err = NewHTTPExporter(ctx, cfg); err != nil {
			return
		}
		reader := metric.NewPeriodicReader(exp, metric.WithInterval(time.Duration(cfg.Resolution)*time.Second))
		meterProvider = NewMeterProvider(cfg, reader)
		global.SetMeterProvider(meterProvider)
		recorder, err = NewRecorder(meterProvider.Meter(MeterName))
		glog.Infof("otel metrics exported to %s every %ds", cfg.Endpoint(), cfg.Resolution)
	})
	return
}

// NewMeterProvider builds a provider reading through reader, with the
// decode latency histogram bucketed per cfg.
func NewMeterProvider(cfg *otelCfg.Config, reader metric.Reader) *metric.MeterProvider {
	decodeView := metric.NewView(
		metric.Instrument{
			Name:  PopulateMetricNamePrefix("decode_latency"),
			Scope: instrumentation.Scope{Name: MeterName},
		},
		metric.Stream{
			Aggregation: aggregation.ExplicitBucketHistogram{
				Boundaries: cfg.HistogramBuckets.Decode,
			},
		})
	return metric.NewMeterProvider(
		metric.WithResource(getResourceInfo(cfg)),
		metric.WithReader(reader),
		metric.WithView(decodeView),
	)
}

func NewHTTPExporter(ctx context.Context, cfg *otelCfg.Config) (metric.Exporter, error) {
	deltaTemporalitySelector := func(metric.InstrumentKind) metricdata.Temporality { return metricdata.DeltaTemporality }
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint()),
		otlpmetrichttp.WithURLPath(cfg.UrlPath),
		otlpmetrichttp.WithTimeout(7 * time.Second),
		otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression),
		otlpmetrichttp.WithTemporalitySelector(deltaTemporalitySelector),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 1 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  240 * time.Second,
		}),
	}
	if !cfg.UseTls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

func getResourceInfo(cfg *otelCfg.Config) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	)
}

func IsEnabled() bool {
	return recorder != nil
}

// RecordDecode is a no-op unless metrics export is enabled.
func RecordDecode(profile string, kind string, latency time.Duration) {
	if recorder != nil {
		recorder.RecordDecode(context.Background(), profile, kind, latency)
	}
}

func AddConnections(delta int64) {
	if recorder != nil {
		recorder.AddConnections(context.Background(), delta)
	}
}
