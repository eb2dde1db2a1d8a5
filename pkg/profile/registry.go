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

package profile

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/frankgh/pxf/pkg/util"
)

type snapshot struct {
	profiles    map[string]*Profile
	fingerprint uint32
}

// Registry is the profile catalog. Lookups read an immutable snapshot and
// never block; Reload builds a new snapshot and publishes it atomically.
type Registry struct {
	mtx     sync.Mutex
	current atomic.Pointer[snapshot]
}

func newSnapshot(profiles []*Profile) (*snapshot, error) {
	snap := &snapshot{profiles: make(map[string]*Profile, len(profiles))}
	for _, p := range profiles {
		if p == nil || p.name == "" {
			return nil, fmt.Errorf("profile with empty name")
		}
		key := strings.ToUpper(p.name)
		if _, found := snap.profiles[key]; found {
			return nil, fmt.Errorf("profile '%s' defined more than once", p.name)
		}
		snap.profiles[key] = p
	}
	snap.fingerprint = fingerprint(snap.profiles)
	return snap, nil
}

func fingerprint(profiles map[string]*Profile) uint32 {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var strs []string
	for _, k := range keys {
		strs = append(strs, profiles[k].fields()...)
	}
	return util.Murmur3Fingerprint(strs...)
}

func NewRegistry(profiles ...*Profile) (r *Registry, err error) {
	r = &Registry{}
	if _, err = r.Reload(profiles); err != nil {
		return nil, err
	}
	return
}

// sameAs compares the fingerprints first; the profiles are compared only
// when those match, as two catalogs may share a fingerprint.
func (s *snapshot) sameAs(o *snapshot) bool {
	if s.fingerprint != o.fingerprint || len(s.profiles) != len(o.profiles) {
		return false
	}
	for k, p := range s.profiles {
		if q, found := o.profiles[k]; !found || !p.equal(q) {
			return false
		}
	}
	return true
}

// Reload replaces the catalog. It returns false without swapping when the
// new catalog holds the same profiles as the current one.
//
// thread safe
func (r *Registry) Reload(profiles []*Profile) (changed bool, err error) {
	snap, err := newSnapshot(profiles)
	if err != nil {
		return false, err
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if cur := r.current.Load(); cur != nil && cur.sameAs(snap) {
		glog.V(2).Infof("profiles unchanged (fingerprint %08x)", snap.fingerprint)
		return false, nil
	}
	r.current.Store(snap)
	glog.Infof("loaded %d profiles (fingerprint %08x)", len(snap.profiles), snap.fingerprint)
	return true, nil
}

// Lookup returns the profile with the given name, ignoring case.
//
// thread safe
func (r *Registry) Lookup(name string) (*Profile, bool) {
	snap := r.current.Load()
	if snap == nil {
		return nil, false
	}
	p, ok := snap.profiles[strings.ToUpper(name)]
	return p, ok
}

// Names returns the profile names in sorted order.
func (r *Registry) Names() []string {
	snap := r.current.Load()
	if snap == nil {
		return nil
	}
	names := make([]string, 0, len(snap.profiles))
	for _, p := range snap.profiles {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Fingerprint() uint32 {
	if snap := r.current.Load(); snap != nil {
		return snap.fingerprint
	}
	return 0
}

func (r *Registry) Len() int {
	if snap := r.current.Load(); snap != nil {
		return len(snap.profiles)
	}
	return 0
}
