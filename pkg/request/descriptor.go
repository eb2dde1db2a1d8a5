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
	"encoding/json"
	"strings"

	"github.com/frankgh/pxf/pkg/errors"
)

type OutputFormat int

const (
	FormatText OutputFormat = iota
	FormatGPDBWritable
)

func (f OutputFormat) String() string {
	switch f {
	case FormatText:
		return "TEXT"
	case FormatGPDBWritable:
		return "GPDBWritable"
	}
	return "Unknown"
}

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch {
	case strings.EqualFold(s, "TEXT"):
		return FormatText, nil
	case strings.EqualFold(s, "GPDBWritable"):
		return FormatGPDBWritable, nil
	}
	return FormatText, errors.Errorf(errors.KUnsupportedFormat, "Wrong value for greenplum.format %s", s)
}

// Descriptor is the validated, read-only configuration of one request.
// Getters returning slices or maps return copies.
type Descriptor struct {
	segmentId     int
	totalSegments int
	outputFormat  OutputFormat
	alignment     string
	dataSource    string
	serverName    string
	host          string
	port          int

	hasFilter    bool
	filterString string
	dataFragment int

	fragmentMetadata []byte
	fragmentUserData []byte

	columns   []ColumnDescriptor
	recordKey int

	user         string
	remoteLogin  string
	remoteSecret string

	profile    string
	fragmenter string
	accessor   string
	resolver   string
	metadata   string

	userProps map[string]string

	statsMaxFragments int
	statsSampleRatio  float64
	threadSafe        bool

	params map[string]string
}

func (d *Descriptor) SegmentId() int { return d.segmentId }
func (d *Descriptor) TotalSegments() int { return d.totalSegments }
func (d *Descriptor) OutputFormat() OutputFormat { return d.outputFormat }
func (d *Descriptor) Alignment() string { return d.alignment }
func (d *Descriptor) DataSource() string { return d.dataSource }
func (d *Descriptor) ServerName() string { return d.serverName }
func (d *Descriptor) Host() string { return d.host }
func (d *Descriptor) Port() int { return d.port }
func (d *Descriptor) HasFilter() bool { return d.hasFilter }
func (d *Descriptor) FilterString() string { return d.filterString }
func (d *Descriptor) User() string { return d.user }
func (d *Descriptor) RemoteLogin() string { return d.remoteLogin }
func (d *Descriptor) RemoteSecret() string { return d.remoteSecret }
func (d *Descriptor) Profile() string { return d.profile }
func (d *Descriptor) Fragmenter() string { return d.fragmenter }
func (d *Descriptor) Accessor() string { return d.accessor }
func (d *Descriptor) Resolver() string { return d.resolver }
func (d *Descriptor) Metadata() string { return d.metadata }
func (d *Descriptor) StatsMaxFragments() int { return d.statsMaxFragments }
func (d *Descriptor) StatsSampleRatio() float64 { return d.statsSampleRatio }
func (d *Descriptor) IsThreadSafe() bool { return d.threadSafe }
func (d *Descriptor) NumColumns() int { return len(d.columns) }
func (d *Descriptor) Column(i int) ColumnDescriptor { return d.columns[i] }

// DataFragment is the index of the fragment assigned to this request, or -1.
func (d *Descriptor) DataFragment() int { return d.dataFragment }

func (d *Descriptor) FragmentMetadata() []byte {
	return cloneBytes(d.fragmentMetadata)
}

func (d *Descriptor) FragmentUserData() []byte {
	return cloneBytes(d.fragmentUserData)
}

func (d *Descriptor) Columns() []ColumnDescriptor {
	return append([]ColumnDescriptor(nil), d.columns...)
}

// RecordKeyColumn returns the column named recordkey, if the request has one.
func (d *Descriptor) RecordKeyColumn() (ColumnDescriptor, bool) {
	if d.recordKey < 0 {
		return ColumnDescriptor{}, false
	}
	return d.columns[d.recordKey], true
}

// UserProperty returns a custom option by its lower-case name.
func (d *Descriptor) UserProperty(name string) (string, bool) {
	v, ok := d.userProps[strings.ToLower(name)]
	return v, ok
}

func (d *Descriptor) UserProperties() map[string]string {
	return cloneMap(d.userProps)
}

// Parameters returns every request parameter after profile expansion.
func (d *Descriptor) Parameters() map[string]string {
	return cloneMap(d.params)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

func cloneMap(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

type (
	columnJSON struct {
		Name          string `json:"name"`
		TypeCode      int    `json:"typeCode"`
		TypeName      string `json:"typeName"`
		Index         int    `json:"index"`
		TypeModifiers []int  `json:"typeModifiers,omitempty"`
	}
	descriptorJSON struct {
		SegmentId         int               `json:"segmentId"`
		TotalSegments     int               `json:"totalSegments"`
		OutputFormat      string            `json:"outputFormat"`
		Alignment         string            `json:"alignment"`
		DataSource        string            `json:"dataSource"`
		ServerName        string            `json:"serverName"`
		Host              string            `json:"host,omitempty"`
		Port              int               `json:"port,omitempty"`
		HasFilter         bool              `json:"hasFilter"`
		Filter            string            `json:"filter,omitempty"`
		DataFragment      int               `json:"dataFragment"`
		FragmentMetadata  []byte            `json:"fragmentMetadata,omitempty"`
		FragmentUserData  []byte            `json:"fragmentUserData,omitempty"`
		Columns           []columnJSON      `json:"columns"`
		User              string            `json:"user"`
		RemoteLogin       string            `json:"remoteLogin,omitempty"`
		Profile           string            `json:"profile,omitempty"`
		Fragmenter        string            `json:"fragmenter,omitempty"`
		Accessor          string            `json:"accessor"`
		Resolver          string            `json:"resolver"`
		Metadata          string            `json:"metadata,omitempty"`
		ThreadSafe        bool              `json:"threadSafe"`
		StatsMaxFragments int               `json:"statsMaxFragments,omitempty"`
		StatsSampleRatio  float64           `json:"statsSampleRatio,omitempty"`
		UserProperties    map[string]string `json:"userProperties"`
	}
)

// MarshalJSON renders the descriptor for diagnostics. The remote secret is
// never included.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	v := descriptorJSON{
		SegmentId:         d.segmentId,
		TotalSegments:     d.totalSegments,
		OutputFormat:      d.outputFormat.String(),
		Alignment:         d.alignment,
		DataSource:        d.dataSource,
		ServerName:        d.serverName,
		Host:              d.host,
		Port:              d.port,
		HasFilter:         d.hasFilter,
		Filter:            d.filterString,
		DataFragment:      d.dataFragment,
		FragmentMetadata:  d.fragmentMetadata,
		FragmentUserData:  d.fragmentUserData,
		Columns:           make([]columnJSON, len(d.columns)),
		User:              d.user,
		RemoteLogin:       d.remoteLogin,
		Profile:           d.profile,
		Fragmenter:        d.fragmenter,
		Accessor:          d.accessor,
		Resolver:          d.resolver,
		Metadata:          d.metadata,
		ThreadSafe:        d.threadSafe,
		StatsMaxFragments: d.statsMaxFragments,
		StatsSampleRatio:  d.statsSampleRatio,
		UserProperties:    d.userProps,
	}
	for i, c := range d.columns {
		v.Columns[i] = columnJSON{
			Name:          c.name,
			TypeCode:      c.typeCode,
			TypeName:      c.typeName,
			Index:         c.index,
			TypeModifiers: c.typeMods,
		}
	}
	return json.Marshal(&v)
}
