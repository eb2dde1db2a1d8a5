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

package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/frankgh/pxf/pkg/util"
)

type (
	// RequestStat accumulates the latencies of one kind of request.
	RequestStat struct {
		mtx       sync.Mutex
		hist      *hdrhistogram.Histogram
		total     time.Duration
		numErrors int64
	}

	StatsData struct {
		NumRequests  int64         `json:"numRequests"`
		NumErrors    int64         `json:"numErrors"`
		AvgLatency   util.Duration `json:"avg"`
		MinLatency   util.Duration `json:"min"`
		MaxLatency   util.Duration `json:"max"`
		P50Latency   util.Duration `json:"p50"`
		P95Latency   util.Duration `json:"p95"`
		P99Latency   util.Duration `json:"p99"`
		P9999Latency util.Duration `json:"p9999"`
	}
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, int64(3600*time.Second), 3)
}

func (s *RequestStat) Put(tm time.Duration, err error) {
	s.mtx.Lock()
	if s.hist == nil {
		s.hist = newHistogram()
	}
	s.hist.RecordValue(int64(tm))
	s.total += tm
	if err != nil {
		s.numErrors++
	}
	s.mtx.Unlock()
}

func (s *RequestStat) GetStats() (stat StatsData) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.hist == nil {
		return
	}
	stat.NumRequests = s.hist.TotalCount()
	stat.NumErrors = s.numErrors
	stat.MinLatency.Duration = time.Duration(s.hist.Min())
	stat.MaxLatency.Duration = time.Duration(s.hist.Max())
	stat.P50Latency.Duration = time.Duration(s.hist.ValueAtQuantile(50.))
	stat.P95Latency.Duration = time.Duration(s.hist.ValueAtQuantile(95.))
	stat.P99Latency.Duration = time.Duration(s.hist.ValueAtQuantile(99.))
	stat.P9999Latency.Duration = time.Duration(s.hist.ValueAtQuantile(99.99))
	if stat.NumRequests != 0 {
		stat.AvgLatency.Duration = s.total / time.Duration(stat.NumRequests)
	}
	return
}

func (s *RequestStat) GetTotalCount() int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.hist == nil {
		return 0
	}
	return s.hist.TotalCount()
}

func (s *RequestStat) Reset() {
	s.mtx.Lock()
	if s.hist != nil {
		s.hist.Reset()
	}
	s.numErrors = 0
	s.total = 0
	s.mtx.Unlock()
}
