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

package request

import (
	"github.com/golang/glog"

	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/params"
	"github.com/frankgh/pxf/pkg/profile"
)

const (
	defaultServerName   = "default"
	noDataFragment      = -1
	statsRatioLowBound  = "0.0001"
	statsRatioHighBound = "1.0"
)

// Decode validates the parameters of one request and builds its descriptor.
// If ns names a profile it is expanded from catalog first, which adds the
// profile's options to ns. The first failure aborts decoding.
func Decode(ns *params.Namespace, catalog profile.Catalog) (*Descriptor, error) {
	res, err := profile.Resolve(ns, catalog)
	if err != nil {
		return nil, err
	}
	r := reader{ns: ns}
	d := &Descriptor{recordKey: -1}

	if d.totalSegments, err = r.requiredInt(KeySegmentCount); err != nil {
		return nil, err
	}
	if d.segmentId, err = r.requiredInt(KeySegmentId); err != nil {
		return nil, err
	}
	var format string
	if format, err = r.requiredString(KeyFormat); err != nil {
		return nil, err
	}
	if d.outputFormat, err = ParseOutputFormat(format); err != nil {
		return nil, err
	}
	var dir string
	if dir, err = r.requiredString(KeyDataDir); err != nil {
		return nil, err
	}
	d.dataSource = res.DataSource(dir)
	if d.user, err = r.requiredString(KeyUser); err != nil {
		return nil, err
	}
	if d.alignment, err = r.requiredString(KeyAlignment); err != nil {
		return nil, err
	}
	d.host = r.optionalString(KeyUrlHost, "")
	if d.port, err = r.optionalInt(KeyUrlPort, 0); err != nil {
		return nil, err
	}
	d.serverName = r.optionalString(KeyServer, defaultServerName)
	d.remoteLogin = r.optionalString(KeyRemoteUser, "")
	d.remoteSecret = r.optionalString(KeyRemotePass, "")

	if err = r.decodeFilter(d); err != nil {
		return nil, err
	}
	if d.dataFragment, err = r.optionalInt(KeyDataFragment, noDataFragment); err != nil {
		return nil, err
	}
	if d.fragmentMetadata, err = r.base64Blob(KeyFragmentMetadata, "Fragment metadata information"); err != nil {
		return nil, err
	}
	if d.fragmentUserData, err = r.base64Blob(KeyFragmentUserData, "Fragment user data"); err != nil {
		return nil, err
	}

	d.profile = r.optionalString(KeyProfile, "")
	if err = r.decodePlugins(d, res); err != nil {
		return nil, err
	}
	if err = r.decodeStats(d); err != nil {
		return nil, err
	}
	if d.threadSafe, err = r.triStateBoolean(KeyThreadSafe, true); err != nil {
		return nil, err
	}
	if d.columns, d.recordKey, err = r.buildColumns(); err != nil {
		return nil, err
	}
	d.userProps = r.userProperties()
	d.params = ns.Map()

	if glog.V(2) {
		glog.Infof("decoded request seg=%d/%d profile=%s source=%s columns=%d",
			d.segmentId, d.totalSegments, d.profile, d.dataSource, len(d.columns))
	}
	return d, nil
}

func (r reader) decodeFilter(d *Descriptor) (err error) {
	var flag int
	if flag, err = r.optionalInt(KeyHasFilter, 0); err != nil {
		return
	}
	d.hasFilter = flag != 0
	if d.hasFilter {
		d.filterString, err = r.requiredString(KeyFilter)
	}
	return
}

// plugin returns the explicit value of key, falling back to the profile's
// plugin of the given kind.
func (r reader) plugin(key string, kind string, res profile.Resolution, required bool) (string, error) {
	if v, ok := r.ns.Get(key); ok {
		return v, nil
	}
	if v, ok := res.Plugin(kind); ok {
		return v, nil
	}
	if required {
		return "", errors.MissingParameter(key)
	}
	return "", nil
}

func (r reader) decodePlugins(d *Descriptor, res profile.Resolution) (err error) {
	if d.fragmenter, err = r.plugin(KeyFragmenter, profile.PluginFragmenter, res, false); err != nil {
		return
	}
	if d.accessor, err = r.plugin(KeyAccessor, profile.PluginAccessor, res, true); err != nil {
		return
	}
	if d.resolver, err = r.plugin(KeyResolver, profile.PluginResolver, res, true); err != nil {
		return
	}
	d.metadata, err = r.plugin(KeyMetadata, profile.PluginMetadata, res, false)
	return
}

// decodeStats validates each stats option that is present, then requires
// that they come as a pair.
func (r reader) decodeStats(d *Descriptor) (err error) {
	if r.ns.Contains(KeyStatsMaxFrags) {
		if d.statsMaxFragments, err = r.positiveInt(KeyStatsMaxFrags); err != nil {
			return
		}
	}
	if r.ns.Contains(KeyStatsSampleRatio) {
		if d.statsSampleRatio, err = r.boundedDouble(KeyStatsSampleRatio, statsRatioLowBound, statsRatioHighBound); err != nil {
			return
		}
	}
	if err = r.paired(KeyStatsSampleRatio, KeyStatsMaxFrags); err != nil {
		d.statsMaxFragments, d.statsSampleRatio = 0, 0
	}
	return
}

func (r reader) userProperties() map[string]string {
	props := make(map[string]string)
	for _, k := range r.ns.Keys() {
		if IsSystemKey(k) {
			continue
		}
		v, _ := r.ns.Get(k)
		props[userPropName(k)] = v
	}
	return props
}
