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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	otelCfg "github.com/frankgh/pxf/pkg/logging/otel/config"
)

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) (total int64, found bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			found = true
		}
	}
	return
}

func TestRecorder(t *testing.T) {
	cfg := &otelCfg.Config{ServiceName: "pxf"}
	cfg.SetDefaultIfNotDefined()

	reader := metric.NewManualReader()
	provider := NewMeterProvider(cfg, reader)
	defer provider.Shutdown(context.Background())

	r, err := NewRecorder(provider.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	r.RecordDecode(ctx, "HIVE", "", 3*time.Millisecond)
	r.RecordDecode(ctx, "HIVE", "", time.Millisecond)
	r.RecordDecode(ctx, "S3Text", "MissingParameter", time.Millisecond)
	r.AddConnections(ctx, 2)
	r.AddConnections(ctx, -1)

	rm, err := reader.Collect(ctx)
	require.NoError(t, err)

	n, ok := sumOf(t, rm, PopulateMetricNamePrefix("decode"))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	n, ok = sumOf(t, rm, PopulateMetricNamePrefix("decode_error"))
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)

	n, ok = sumOf(t, rm, PopulateMetricNamePrefix("connections"))
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)
}

func TestConfigDefaults(t *testing.T) {
	var cfg otelCfg.Config
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:4318", cfg.Endpoint())
	assert.Equal(t, "/v1/metrics", cfg.UrlPath)
	assert.NotEmpty(t, cfg.HistogramBuckets.Decode)

	cfg.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestRecordDecodeDisabled(t *testing.T) {
	assert.False(t, IsEnabled())
	RecordDecode("HIVE", "", time.Millisecond)
	AddConnections(1)
	assert.Error(t, Initialize())
	assert.Error(t, Initialize("not a config"))
	assert.NoError(t, Initialize(&otelCfg.Config{}))
	assert.False(t, IsEnabled())
}
