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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/params"
	"github.com/frankgh/pxf/pkg/profile"
)

func baseParameters() map[string]string {
	return map[string]string{
		"X-GP-ALIGNMENT":                 "all",
		"X-GP-SEGMENT-ID":                "-44",
		"X-GP-SEGMENT-COUNT":             "2",
		"X-GP-HAS-FILTER":                "0",
		"X-GP-FORMAT":                    "TEXT",
		"X-GP-URL-HOST":                  "my://bags",
		"X-GP-URL-PORT":                  "-8020",
		"X-GP-ATTRS":                     "-1",
		"X-GP-OPTIONS-ACCESSOR":          "are",
		"X-GP-OPTIONS-RESOLVER":          "packed",
		"X-GP-DATA-DIR":                  "i'm/ready/to/go",
		"X-GP-FRAGMENT-METADATA":         "U29tZXRoaW5nIGluIHRoZSB3YXk=",
		"X-GP-OPTIONS-I'M-STANDING-HERE": "outside-your-door",
		"X-GP-USER":                      "alex",
	}
}

func testCatalog(t *testing.T) *profile.Registry {
	reg, err := profile.NewRegistry(append(profile.Builtin(),
		profile.NewProfile("a profile", "", nil, map[string]string{
			"wHEn you trY yOUR bESt":     "but you dont succeed",
			"when YOU get WHAT you WANT": "but not what you need",
			"when you feel so tired":     "but you cant sleep",
		}))...)
	require.NoError(t, err)
	return reg
}

func decode(t *testing.T, raw map[string]string) (*Descriptor, error) {
	return Decode(params.New(raw), testCatalog(t))
}

func mustDecode(t *testing.T, raw map[string]string) *Descriptor {
	d, err := decode(t, raw)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

func requireDecodeError(t *testing.T, raw map[string]string, kind errors.Kind, msg string) {
	t.Helper()
	d, err := decode(t, raw)
	require.Error(t, err)
	assert.Nil(t, d)
	assert.Equal(t, msg, err.Error())
	assert.Equal(t, kind, errors.KindOf(err))
}

func TestDecode(t *testing.T) {
	raw := baseParameters()
	d := mustDecode(t, raw)

	assert.Equal(t, "all", d.Alignment())
	assert.Equal(t, 2, d.TotalSegments())
	assert.Equal(t, -44, d.SegmentId())
	assert.Equal(t, FormatText, d.OutputFormat())
	assert.Equal(t, "my://bags", d.Host())
	assert.Equal(t, -8020, d.Port())
	assert.Equal(t, "default", d.ServerName())
	assert.False(t, d.HasFilter())
	assert.Empty(t, d.FilterString())
	assert.Equal(t, 0, d.NumColumns())
	assert.Equal(t, -1, d.DataFragment())
	_, ok := d.RecordKeyColumn()
	assert.False(t, ok)
	assert.Equal(t, "are", d.Accessor())
	assert.Equal(t, "packed", d.Resolver())
	assert.Empty(t, d.Fragmenter())
	assert.Empty(t, d.Metadata())
	assert.Equal(t, "i'm/ready/to/go", d.DataSource())
	assert.Equal(t, "alex", d.User())
	assert.Empty(t, d.RemoteLogin())
	assert.Empty(t, d.RemoteSecret())
	assert.True(t, d.IsThreadSafe())

	v, ok := d.UserProperty("i'm-standing-here")
	assert.True(t, ok)
	assert.Equal(t, "outside-your-door", v)
	assert.Equal(t, map[string]string{"i'm-standing-here": "outside-your-door"}, d.UserProperties())

	want := params.New(raw).Map()
	if diff := cmp.Diff(want, d.Parameters()); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeOptionalScalars(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-SERVER"] = "s3-east"
	raw["X-GP-REMOTE-USER"] = "scott"
	raw["X-GP-REMOTE-PASS"] = "tiger"
	raw["X-GP-DATA-FRAGMENT"] = "7"
	raw["X-GP-FRAGMENT-USER-DATA"] = "dXNlciBkYXRh"
	raw["X-GP-FORMAT"] = "gpdbwritable"
	raw["X-GP-OPTIONS-FRAGMENTER"] = "frag"
	raw["X-GP-OPTIONS-METADATA"] = "meta"

	d := mustDecode(t, raw)
	assert.Equal(t, "s3-east", d.ServerName())
	assert.Equal(t, "scott", d.RemoteLogin())
	assert.Equal(t, "tiger", d.RemoteSecret())
	assert.Equal(t, 7, d.DataFragment())
	assert.Equal(t, "user data", string(d.FragmentUserData()))
	assert.Equal(t, FormatGPDBWritable, d.OutputFormat())
	assert.Equal(t, "frag", d.Fragmenter())
	assert.Equal(t, "meta", d.Metadata())
	assert.Empty(t, d.UserProperties()["fragmenter"])
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-FORMAT"] = "CSV"
	requireDecodeError(t, raw, errors.KUnsupportedFormat, "Wrong value for greenplum.format CSV")
}

func TestDecodeDefinedProfile(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-OPTIONS-PROFILE"] = "HIVE"
	delete(raw, "X-GP-OPTIONS-ACCESSOR")
	delete(raw, "X-GP-OPTIONS-RESOLVER")

	d := mustDecode(t, raw)
	assert.Equal(t, "HIVE", d.Profile())
	assert.Equal(t, "hive.HiveDataFragmenter", d.Fragmenter())
	assert.Equal(t, "hive.HiveAccessor", d.Accessor())
	assert.Equal(t, "hive.HiveResolver", d.Resolver())
	assert.Equal(t, "hive.HiveMetadataFetcher", d.Metadata())
	assert.Equal(t, "i'm/ready/to/go", d.DataSource())
}

func TestDecodeExplicitPluginOverridesProfile(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-OPTIONS-PROFILE"] = "hive"

	d := mustDecode(t, raw)
	assert.Equal(t, "hive.HiveDataFragmenter", d.Fragmenter())
	assert.Equal(t, "are", d.Accessor())
	assert.Equal(t, "packed", d.Resolver())
}

func TestDecodeUndefinedProfile(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-OPTIONS-PROFILE"] = "THIS_PROFILE_NEVER_EXISTED!"
	requireDecodeError(t, raw, errors.KUndefinedProfile,
		"No profile definition found for 'THIS_PROFILE_NEVER_EXISTED!'")
}

func TestDecodeProfileWithDuplicateProperty(t *testing.T) {
	raw := baseParameters()
	raw["x-gp-options-profile"] = "a profile"
	raw["when you try your best"] = "and you do succeed"
	raw["WHEN you GET what YOU want"] = "and what you need"
	requireDecodeError(t, raw, errors.KDuplicateProfileProperty,
		"Profile 'a profile' already defines: [when YOU get WHAT you WANT, wHEn you trY yOUR bESt]")
}

func TestDecodeProfileOptionsBecomeUserProperties(t *testing.T) {
	raw := baseParameters()
	raw["x-gp-options-profile"] = "a profile"

	d := mustDecode(t, raw)
	v, ok := d.UserProperty("WHEN YOU FEEL SO TIRED")
	assert.True(t, ok)
	assert.Equal(t, "but you cant sleep", v)
	assert.Len(t, d.UserProperties(), 4)
}

func TestDecodeProfileSetsUrlScheme(t *testing.T) {
	for name, want := range map[string]string{
		"S3Text":     "s3://i'm/ready/to/go",
		"ADLParquet": "adl://i'm/ready/to/go",
		"GSText":     "gs://i'm/ready/to/go",
		"wasbstext":  "wasbs://i'm/ready/to/go",
		"HiveText":   "i'm/ready/to/go",
	} {
		t.Run(name, func(t *testing.T) {
			raw := baseParameters()
			raw["X-GP-OPTIONS-PROFILE"] = name
			assert.Equal(t, want, mustDecode(t, raw).DataSource())
		})
	}
}

func TestDecodeThreadSafe(t *testing.T) {
	for value, want := range map[string]bool{
		"TRUE":  true,
		"true":  true,
		"False": false,
		"falSE": false,
	} {
		raw := baseParameters()
		raw["X-GP-OPTIONS-THREAD-SAFE"] = value
		assert.Equal(t, want, mustDecode(t, raw).IsThreadSafe(), value)
	}

	raw := baseParameters()
	raw["X-GP-OPTIONS-THREAD-SAFE"] = "maybe"
	requireDecodeError(t, raw, errors.KIllegalBoolean, "Illegal boolean value 'maybe'. Usage: [TRUE|FALSE]")
}

func TestDecodeFragmentMetadata(t *testing.T) {
	raw := baseParameters()
	d := mustDecode(t, raw)
	assert.Equal(t, "Something in the way", string(d.FragmentMetadata()))

	// callers get a copy
	b := d.FragmentMetadata()
	b[0] = 'X'
	assert.Equal(t, "Something in the way", string(d.FragmentMetadata()))

	delete(raw, "X-GP-FRAGMENT-METADATA")
	assert.Nil(t, mustDecode(t, raw).FragmentMetadata())

	raw["X-GP-FRAGMENT-METADATA"] = "so b@d"
	requireDecodeError(t, raw, errors.KMalformedBase64,
		"Fragment metadata information must be Base64 encoded.(Bad value: so b@d)")
}

func TestDecodeMissingUser(t *testing.T) {
	raw := baseParameters()
	delete(raw, "X-GP-USER")
	requireDecodeError(t, raw, errors.KMissingParameter,
		"Internal server error. Property \"USER\" has no value in current request")
}

func TestDecodeMissingRequired(t *testing.T) {
	for _, key := range []string{"SEGMENT-COUNT", "SEGMENT-ID", "FORMAT", "DATA-DIR", "ALIGNMENT",
		"ATTRS", "OPTIONS-ACCESSOR", "OPTIONS-RESOLVER"} {
		raw := baseParameters()
		delete(raw, "X-GP-"+key)
		d, err := decode(t, raw)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, errors.MissingParameter(key), key)
	}
}

func TestDecodeMalformedSegment(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-SEGMENT-ID"] = "first"
	requireDecodeError(t, raw, errors.KMalformedNumber, `strconv.Atoi: parsing "first": invalid syntax`)
}

func TestDecodeFilter(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-HAS-FILTER"] = "1"
	raw["X-GP-FILTER"] = "UTF8_計算機用語_00000000"
	d := mustDecode(t, raw)
	assert.True(t, d.HasFilter())
	assert.Equal(t, "UTF8_計算機用語_00000000", d.FilterString())

	delete(raw, "X-GP-FILTER")
	requireDecodeError(t, raw, errors.KMissingParameter,
		"Internal server error. Property \"FILTER\" has no value in current request")

	delete(raw, "X-GP-HAS-FILTER")
	assert.False(t, mustDecode(t, raw).HasFilter())
}

func TestDecodeNoStats(t *testing.T) {
	d := mustDecode(t, baseParameters())
	assert.Equal(t, 0, d.StatsMaxFragments())
	assert.Equal(t, 0.0, d.StatsSampleRatio())
}

func TestDecodeStats(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-OPTIONS-STATS-MAX-FRAGMENTS"] = "10101"
	raw["X-GP-OPTIONS-STATS-SAMPLE-RATIO"] = "0.039"
	d := mustDecode(t, raw)
	assert.Equal(t, 10101, d.StatsMaxFragments())
	assert.InDelta(t, 0.039, d.StatsSampleRatio(), 1e-9)

	raw["X-GP-OPTIONS-STATS-SAMPLE-RATIO"] = "1"
	assert.Equal(t, 1.0, mustDecode(t, raw).StatsSampleRatio())
}

func TestDecodeStatsMissingPair(t *testing.T) {
	const msg = "Missing parameter: STATS-SAMPLE-RATIO and STATS-MAX-FRAGMENTS must be set together"

	raw := baseParameters()
	raw["X-GP-OPTIONS-STATS-MAX-FRAGMENTS"] = "13"
	requireDecodeError(t, raw, errors.KPairedParameterMissing, msg)

	delete(raw, "X-GP-OPTIONS-STATS-MAX-FRAGMENTS")
	raw["X-GP-OPTIONS-STATS-SAMPLE-RATIO"] = "1"
	requireDecodeError(t, raw, errors.KPairedParameterMissing, msg)
}

func TestDecodeStatsSampleRatioOutOfRange(t *testing.T) {
	for value, rendered := range map[string]string{
		"101":     "101",
		"0":       "0",
		"0.0001":  "0.0001",
		"0.00005": "5e-05",
		"-0.5":    "-0.5",
	} {
		raw := baseParameters()
		raw["X-GP-OPTIONS-STATS-SAMPLE-RATIO"] = value
		requireDecodeError(t, raw, errors.KOutOfRange,
			"Wrong value '"+rendered+"'. STATS-SAMPLE-RATIO must be a value between 0.0001 and 1.0")
	}

	raw := baseParameters()
	raw["X-GP-OPTIONS-STATS-SAMPLE-RATIO"] = "a"
	requireDecodeError(t, raw, errors.KMalformedNumber, `strconv.ParseFloat: parsing "a": invalid syntax`)
}

func TestDecodeStatsMaxFragmentsNotPositive(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-OPTIONS-STATS-MAX-FRAGMENTS"] = "10.101"
	requireDecodeError(t, raw, errors.KMalformedNumber, `strconv.Atoi: parsing "10.101": invalid syntax`)

	raw["X-GP-OPTIONS-STATS-MAX-FRAGMENTS"] = "0"
	requireDecodeError(t, raw, errors.KNotPositive, "Wrong value '0'. STATS-MAX-FRAGMENTS must be a positive integer")
}

func TestDecodeAlignmentIsPerRequest(t *testing.T) {
	a := baseParameters()
	b := baseParameters()
	b["X-GP-ALIGNMENT"] = "8"
	da, db := mustDecode(t, a), mustDecode(t, b)
	assert.Equal(t, "all", da.Alignment())
	assert.Equal(t, "8", db.Alignment())
}

func TestDescriptorMarshalJSON(t *testing.T) {
	raw := baseParameters()
	raw["X-GP-REMOTE-PASS"] = "tiger"
	raw["X-GP-ATTRS"] = "1"
	raw["X-GP-ATTR-NAME0"] = "recordkey"
	raw["X-GP-ATTR-TYPECODE0"] = "25"
	raw["X-GP-ATTR-TYPENAME0"] = "text"

	b, err := json.Marshal(mustDecode(t, raw))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "tiger")

	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &v))
	assert.Equal(t, "TEXT", v["outputFormat"])
	assert.Equal(t, "are", v["accessor"])
	cols := v["columns"].([]interface{})
	require.Len(t, cols, 1)
	assert.Equal(t, "recordkey", cols[0].(map[string]interface{})["name"])
}
