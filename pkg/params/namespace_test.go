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

package params

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankgh/pxf/pkg/errors"
)

func TestNewStripsPrefixAndFoldsCase(t *testing.T) {
	ns := New(map[string]string{
		"X-GP-SEGMENT-ID":       "-44",
		"x-gp-options-profile":  "HIVE",
		"when you try your best": "and you do succeed",
	})

	v, ok := ns.Get("segment-id")
	assert.True(t, ok)
	assert.Equal(t, "-44", v)

	v, ok = ns.Get("OPTIONS-PROFILE")
	assert.True(t, ok)
	assert.Equal(t, "HIVE", v)

	assert.True(t, ns.Contains("WHEN YOU TRY YOUR BEST"))
	assert.False(t, ns.Contains("X-GP-SEGMENT-ID"))
	assert.Equal(t, []string{"OPTIONS-PROFILE", "SEGMENT-ID", "WHEN YOU TRY YOUR BEST"}, ns.Keys())
}

func TestGetRequired(t *testing.T) {
	ns := New(map[string]string{"X-GP-USER": "alex"})

	v, err := ns.GetRequired("User")
	require.NoError(t, err)
	assert.Equal(t, "alex", v)

	_, err = ns.GetRequired("DATA-DIR")
	require.EqualError(t, err, "Internal server error. Property \"DATA-DIR\" has no value in current request")
	assert.ErrorIs(t, err, errors.ErrMissingParameter)

	assert.Equal(t, "default", ns.GetOptional("SERVER", "default"))
}

func TestPutIfAbsent(t *testing.T) {
	ns := New(nil)
	assert.True(t, ns.PutIfAbsent("format", "TEXT"))
	assert.False(t, ns.PutIfAbsent("FORMAT", "GPDBWritable"))
	v, _ := ns.Get("Format")
	assert.Equal(t, "TEXT", v)

	ns.Put("FORMAT", "GPDBWritable")
	v, _ = ns.Get("format")
	assert.Equal(t, "GPDBWritable", v)
	assert.Equal(t, 1, ns.Len())
}

func TestFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set("X-GP-User", "alex")
	h.Set("X-Gp-Segment-Count", "2")
	h.Set("Content-Type", "application/json")

	ns := FromHeader(h)
	assert.Equal(t, 2, ns.Len())
	v, _ := ns.Get("SEGMENT-COUNT")
	assert.Equal(t, "2", v)
	assert.False(t, ns.Contains("CONTENT-TYPE"))
}

func TestMapIsACopy(t *testing.T) {
	ns := New(map[string]string{"X-GP-USER": "alex"})
	m := ns.Map()
	m["USER"] = "bob"
	v, _ := ns.Get("USER")
	assert.Equal(t, "alex", v)
}
