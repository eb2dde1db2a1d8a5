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

	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/params"
)

// KeyProfile is the request parameter naming the profile.
const KeyProfile = "OPTIONS-PROFILE"

// Catalog is the read side of a profile registry.
type Catalog interface {
	Lookup(name string) (*Profile, bool)
}

// storage families whose profiles address their data source with a URI
// scheme. Longer prefixes go first.
var schemes = []struct {
	prefix string
	scheme string
}{
	{"WASBS", "wasbs"},
	{"ADL", "adl"},
	{"S3", "s3"},
	{"GS", "gs"},
}

// Resolution is the outcome of resolving the profile of one request.
type Resolution struct {
	Profile *Profile
	Scheme  string
}

// Used reports whether the request named a profile.
func (r Resolution) Used() bool {
	return r.Profile != nil
}

// Plugin returns the profile's plugin of the given kind, if any.
func (r Resolution) Plugin(kind string) (string, bool) {
	if r.Profile == nil {
		return "", false
	}
	return r.Profile.Plugin(kind)
}

// DataSource applies the storage family scheme to dir.
func (r Resolution) DataSource(dir string) string {
	if r.Scheme == "" {
		return dir
	}
	return r.Scheme + "://" + dir
}

// SchemeFor returns the URI scheme implied by the profile name, or "".
func SchemeFor(profileName string) string {
	upper := strings.ToUpper(profileName)
	for _, s := range schemes {
		if strings.HasPrefix(upper, s.prefix) {
			return s.scheme
		}
	}
	return ""
}

// Resolve expands the profile named by OPTIONS-PROFILE into ns.
//
// Every preset option is checked against ns before any is copied: if some
// are already set, Resolve fails listing all of them and ns is left
// untouched. Plugin names are not copied; explicitly supplied plugins take
// precedence over the profile's (see Resolution.Plugin).
func Resolve(ns *params.Namespace, catalog Catalog) (res Resolution, err error) {
	name, ok := ns.Get(KeyProfile)
	if !ok {
		return
	}
	var p *Profile
	if catalog != nil {
		p, ok = catalog.Lookup(name)
	}
	if !ok {
		err = errors.Errorf(errors.KUndefinedProfile, "No profile definition found for '%s'", name)
		return
	}

	options := p.Options()
	var duplicates []string
	for _, o := range options {
		if ns.Contains(params.StripPrefix(o.Key)) {
			duplicates = append(duplicates, o.Key)
		}
	}
	if len(duplicates) != 0 {
		sort.Slice(duplicates, func(i, j int) bool {
			li, lj := strings.ToLower(duplicates[i]), strings.ToLower(duplicates[j])
			if li != lj {
				return li < lj
			}
			return duplicates[i] < duplicates[j]
		})
		err = errors.NewError(errors.KDuplicateProfileProperty,
			fmt.Sprintf("Profile '%s' already defines: [%s]", name, strings.Join(duplicates, ", ")))
		return
	}
	for _, o := range options {
		ns.Put(params.StripPrefix(o.Key), o.Value)
	}

	res.Profile = p
	res.Scheme = SchemeFor(name)
	return
}
