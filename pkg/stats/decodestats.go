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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/util"
)

const (
	kEmaMultiplier float32 = 0.05

	// NoProfile keys the statistics of requests naming their plugins directly.
	NoProfile = "-"
)

type (
	// DecodeStats aggregates the outcome of request decoding.
	DecodeStats struct {
		all       RequestStat
		errors    [errors.KUnsupportedFormat + 1]util.AtomicCounter
		byProfile sync.Map

		mtx     sync.Mutex
		tmStart time.Time
	}

	ProfileStats struct {
		Name       string `json:"name"`
		NumDecoded uint64 `json:"numDecoded"`
		AvgColumns uint32 `json:"avgColumns"`
		MaxColumns uint32 `json:"maxColumns"`
	}

	profileEntryT struct {
		mtx   sync.Mutex
		stats ProfileStats
	}

	Summary struct {
		Since    time.Time         `json:"since"`
		Latency  StatsData         `json:"latency"`
		Errors   map[string]uint64 `json:"errors"`
		Profiles []ProfileStats    `json:"profiles"`
	}
)

func NewDecodeStats() *DecodeStats {
	return &DecodeStats{tmStart: time.Now()}
}

// Put records one decode. profile is empty when the request named none;
// columns is only meaningful when err is nil.
func (s *DecodeStats) Put(profile string, columns int, tm time.Duration, err error) {
	s.all.Put(tm, err)
	if err != nil {
		s.errors[errors.KindOf(err)].Add(1)
		return
	}
	if profile == "" {
		profile = NoProfile
	}
	s.collectByProfile(profile, uint32(columns))
}

func (s *DecodeStats) collectByProfile(profile string, cols uint32) {
	key := strings.ToUpper(profile)
	value, ok := s.byProfile.Load(key)
	if !ok {
		value, _ = s.byProfile.LoadOrStore(key, &profileEntryT{
			stats: ProfileStats{Name: profile, AvgColumns: cols},
		})
	}
	st := value.(*profileEntryT)
	st.mtx.Lock()
	st.stats.NumDecoded++
	if st.stats.MaxColumns < cols {
		st.stats.MaxColumns = cols
	}
	avg := float32(st.stats.AvgColumns) + (float32(cols)-float32(st.stats.AvgColumns))*kEmaMultiplier
	st.stats.AvgColumns = uint32(avg + 0.5)
	if st.stats.AvgColumns > st.stats.MaxColumns {
		st.stats.AvgColumns = st.stats.MaxColumns
	}
	st.mtx.Unlock()
}

func (s *DecodeStats) RangeProfileStats(f func(st ProfileStats)) {
	s.byProfile.Range(func(key, value interface{}) bool {
		if v, ok := value.(*profileEntryT); ok {
			v.mtx.Lock()
			st := v.stats
			v.mtx.Unlock()
			f(st)
		}
		return true
	})
}

func (s *DecodeStats) NumErrors(kind errors.Kind) uint64 {
	if int(kind) >= len(s.errors) {
		return 0
	}
	return s.errors[kind].Get()
}

func (s *DecodeStats) GetSummary() Summary {
	sum := Summary{
		Since:   s.since(),
		Latency: s.all.GetStats(),
		Errors:  make(map[string]uint64),
	}
	for k := range s.errors {
		if n := s.errors[k].Get(); n != 0 {
			sum.Errors[errors.Kind(k).String()] = n
		}
	}
	s.RangeProfileStats(func(st ProfileStats) {
		sum.Profiles = append(sum.Profiles, st)
	})
	sort.Slice(sum.Profiles, func(i, j int) bool {
		return sum.Profiles[i].Name < sum.Profiles[j].Name
	})
	return sum
}

func (s *DecodeStats) Reset() {
	s.all.Reset()
	for i := range s.errors {
		s.errors[i].Reset()
	}
	s.byProfile.Range(func(key, _ interface{}) bool {
		s.byProfile.Delete(key)
		return true
	})
	s.mtx.Lock()
	s.tmStart = time.Now()
	s.mtx.Unlock()
}

func (s *DecodeStats) since() time.Time {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.tmStart
}
