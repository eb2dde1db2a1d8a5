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

package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankgh/pxf/pkg/params"
	"github.com/frankgh/pxf/pkg/plugins/builtin"
	"github.com/frankgh/pxf/pkg/plugins/hdfs"
	"github.com/frankgh/pxf/pkg/profile"
	"github.com/frankgh/pxf/pkg/stats"
)

func newTestHandler(t *testing.T) (*Handler, *stats.DecodeStats) {
	catalog, err := profile.NewRegistry(profile.Builtin()...)
	require.NoError(t, err)
	st := stats.NewDecodeStats()
	return NewHandler(catalog, builtin.NewRegistry(), st), st
}

func requestHeaders(t *testing.T, start int64) http.Header {
	b, err := hdfs.FileSplit{Path: "/data/orders.csv", Start: start, Length: 1024}.Encode()
	require.NoError(t, err)
	h := http.Header{}
	for k, v := range map[string]string{
		"X-GP-ALIGNMENT":         "8",
		"X-GP-SEGMENT-ID":        "2",
		"X-GP-SEGMENT-COUNT":     "4",
		"X-GP-FORMAT":            "GPDBWritable",
		"X-GP-ATTRS":             "1",
		"X-GP-ATTR-NAME0":        "id",
		"X-GP-ATTR-TYPECODE0":    "23",
		"X-GP-ATTR-TYPENAME0":    "int4",
		"X-GP-OPTIONS-PROFILE":   "HdfsTextMulti",
		"X-GP-DATA-DIR":          "/data/orders.csv",
		"X-GP-DATA-FRAGMENT":     "0",
		"X-GP-FRAGMENT-METADATA": base64.StdEncoding.EncodeToString(b),
		"X-GP-USER":              "gpadmin",
		"X-GP-REMOTE-USER":       "admin",
		"X-GP-REMOTE-PASS":       "s3cr3t",
	} {
		h.Set(k, v)
	}
	return h
}

func serve(h http.Handler, method string, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type descriptorResult struct {
	RequestId  string `json:"requestId"`
	Descriptor struct {
		SegmentId    int    `json:"segmentId"`
		OutputFormat string `json:"outputFormat"`
		Profile      string `json:"profile"`
		Accessor     string `json:"accessor"`
		Resolver     string `json:"resolver"`
		Columns      []struct {
			Name string `json:"name"`
		} `json:"columns"`
	} `json:"descriptor"`
	AccessorStatus *accessorStatus `json:"accessorStatus"`
}

func TestDescriptor(t *testing.T) {
	h, st := newTestHandler(t)
	rec := serve(h, http.MethodGet, PathDescriptor, requestHeaders(t, 0))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "s3cr3t")

	var res descriptorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.RequestId)
	assert.Equal(t, res.RequestId, rec.Header().Get(HeaderRequestId))
	assert.Equal(t, 2, res.Descriptor.SegmentId)
	assert.Equal(t, "GPDBWritable", res.Descriptor.OutputFormat)
	assert.Equal(t, "HdfsTextMulti", res.Descriptor.Profile)
	assert.Equal(t, "hdfs.QuotedLineBreakAccessor", res.Descriptor.Accessor)
	assert.Equal(t, "hdfs.StringPassResolver", res.Descriptor.Resolver)
	require.Len(t, res.Descriptor.Columns, 1)
	assert.Equal(t, "id", res.Descriptor.Columns[0].Name)

	require.NotNil(t, res.AccessorStatus)
	assert.Equal(t, accessorStatus{
		Name:           "hdfs.QuotedLineBreakAccessor",
		ThreadSafe:     true,
		WorkingSegment: true,
	}, *res.AccessorStatus)

	sum := st.GetSummary()
	assert.Equal(t, int64(1), sum.Latency.NumRequests)
	require.Len(t, sum.Profiles, 1)
	assert.Equal(t, "HdfsTextMulti", sum.Profiles[0].Name)
}

func TestDescriptorAtomicAccessorOffSegment(t *testing.T) {
	h, _ := newTestHandler(t)
	header := requestHeaders(t, 4096)
	header.Set("X-GP-OPTIONS-COMPRESSION_CODEC", "org.apache.hadoop.io.compress.BZip2Codec")
	rec := serve(h, http.MethodPost, PathDescriptor, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res descriptorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.AccessorStatus)
	assert.False(t, res.AccessorStatus.WorkingSegment)
	assert.False(t, res.AccessorStatus.ThreadSafe)
}

func TestDescriptorUnregisteredAccessor(t *testing.T) {
	h, _ := newTestHandler(t)
	header := requestHeaders(t, 0)
	header.Set("X-GP-OPTIONS-PROFILE", "HiveORC")
	rec := serve(h, http.MethodGet, PathDescriptor, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res descriptorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "hive.HiveORCAccessor", res.Descriptor.Accessor)
	assert.Nil(t, res.AccessorStatus)
}

func TestDescriptorErrors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(h http.Header)
		kind    string
		message string
	}{
		{
			name:    "missing alignment",
			modify:  func(h http.Header) { h.Del("X-GP-ALIGNMENT") },
			kind:    "MissingParameter",
			message: "Internal server error. Property \"ALIGNMENT\" has no value in current request",
		},
		{
			name:    "undefined profile",
			modify:  func(h http.Header) { h.Set("X-GP-OPTIONS-PROFILE", "NoSuchProfile") },
			kind:    "UndefinedProfile",
			message: "",
		},
		{
			name:    "bad format",
			modify:  func(h http.Header) { h.Set("X-GP-FORMAT", "CSV") },
			kind:    "UnsupportedFormat",
			message: "Wrong value for greenplum.format CSV",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestHandler(t)
			header := requestHeaders(t, 0)
			tt.modify(header)
			rec := serve(h, http.MethodGet, PathDescriptor, header)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(HeaderRequestId))

			var res errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.kind, res.Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
			assert.Equal(t, uint64(1), st.GetSummary().Errors[tt.kind])
		})
	}
}

func TestDescriptorMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, http.MethodDelete, PathDescriptor, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestProfiles(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, http.MethodGet, PathProfiles, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res profilesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Profiles, "HdfsTextSimple")
	assert.Contains(t, res.Profiles, "HBase")
	assert.Equal(t, h.catalog.Fingerprint(), res.Fingerprint)
}

func TestStatsPages(t *testing.T) {
	h, _ := newTestHandler(t)
	serve(h, http.MethodGet, PathDescriptor, requestHeaders(t, 0))
	bad := requestHeaders(t, 0)
	bad.Set("X-GP-SEGMENT-COUNT", "zero")
	serve(h, http.MethodGet, PathDescriptor, bad)

	rec := serve(h, http.MethodGet, PathStatsJson, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum stats.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(2), sum.Latency.NumRequests)
	assert.Equal(t, int64(1), sum.Latency.NumErrors)
	assert.Equal(t, map[string]uint64{"MalformedNumber": 1}, sum.Errors)

	rec = serve(h, http.MethodGet, PathStats, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "PXF Gateway Statistics")
	assert.Contains(t, body, "MalformedNumber")
	assert.Contains(t, body, "HdfsTextMulti")
}

func TestIndexAndVersion(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, path := range []string{PathProfiles, PathStats, PathVersion, PathConfig} {
		assert.Contains(t, rec.Body.String(), path)
	}
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/nowhere", nil).Code)

	rec = serve(h, http.MethodGet, PathVersion, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PXF")
}

func TestFailedDecodeProfileName(t *testing.T) {
	h, _ := newTestHandler(t)
	tests := []struct {
		raw  map[string]string
		want string
	}{
		{map[string]string{}, stats.NoProfile},
		{map[string]string{"X-GP-OPTIONS-PROFILE": "client-chosen-0001"}, stats.NoProfile},
		{map[string]string{"X-GP-OPTIONS-PROFILE": "hdfstextmulti"}, "HdfsTextMulti"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.knownProfile(params.New(tt.raw)))
	}
}
