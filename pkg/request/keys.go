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
	"regexp"
	"strings"
)

// Request parameters, without the X-GP- transport prefix.
const (
	KeyAlignment        = "ALIGNMENT"
	KeySegmentId        = "SEGMENT-ID"
	KeySegmentCount     = "SEGMENT-COUNT"
	KeyHasFilter        = "HAS-FILTER"
	KeyFilter           = "FILTER"
	KeyFormat           = "FORMAT"
	KeyUrlHost          = "URL-HOST"
	KeyUrlPort          = "URL-PORT"
	KeyAttrs            = "ATTRS"
	KeyAccessor         = "OPTIONS-ACCESSOR"
	KeyResolver         = "OPTIONS-RESOLVER"
	KeyFragmenter       = "OPTIONS-FRAGMENTER"
	KeyMetadata         = "OPTIONS-METADATA"
	KeyProfile          = "OPTIONS-PROFILE"
	KeyThreadSafe       = "OPTIONS-THREAD-SAFE"
	KeyStatsMaxFrags    = "OPTIONS-STATS-MAX-FRAGMENTS"
	KeyStatsSampleRatio = "OPTIONS-STATS-SAMPLE-RATIO"
	KeyDataDir          = "DATA-DIR"
	KeyDataFragment     = "DATA-FRAGMENT"
	KeyFragmentMetadata = "FRAGMENT-METADATA"
	KeyFragmentUserData = "FRAGMENT-USER-DATA"
	KeyServer           = "SERVER"
	KeyRemoteUser       = "REMOTE-USER"
	KeyRemotePass       = "REMOTE-PASS"
	KeyUser             = "USER"

	userPropPrefix = "OPTIONS-"
)

func attrNameKey(i int) string     { return "ATTR-NAME" + itoa(i) }
func attrTypeCodeKey(i int) string { return "ATTR-TYPECODE" + itoa(i) }
func attrTypeNameKey(i int) string { return "ATTR-TYPENAME" + itoa(i) }
func typeModCountKey(i int) string { return "ATTR-TYPEMOD" + itoa(i) + "-COUNT" }
func typeModKey(i, j int) string   { return "ATTR-TYPEMOD" + itoa(i) + "-" + itoa(j) }

var (
	systemKeys = map[string]struct{}{
		KeyAlignment: {}, KeySegmentId: {}, KeySegmentCount: {}, KeyHasFilter: {},
		KeyFilter: {}, KeyFormat: {}, KeyUrlHost: {}, KeyUrlPort: {}, KeyAttrs: {},
		KeyAccessor: {}, KeyResolver: {}, KeyFragmenter: {}, KeyMetadata: {},
		KeyProfile: {}, KeyThreadSafe: {}, KeyStatsMaxFrags: {}, KeyStatsSampleRatio: {},
		KeyDataDir: {}, KeyDataFragment: {}, KeyFragmentMetadata: {}, KeyFragmentUserData: {},
		KeyServer: {}, KeyRemoteUser: {}, KeyRemotePass: {}, KeyUser: {},
	}
	attrKeyPattern = regexp.MustCompile(`^ATTR-(NAME|TYPECODE|TYPENAME)\d+$|^ATTR-TYPEMOD\d+-(COUNT|\d+)$`)
)

// IsSystemKey reports whether key, without the transport prefix, is a
// parameter of the protocol rather than a user property.
func IsSystemKey(key string) bool {
	key = strings.ToUpper(key)
	if _, ok := systemKeys[key]; ok {
		return true
	}
	return attrKeyPattern.MatchString(key)
}

// userPropName turns a non-system key into its user property name.
func userPropName(key string) string {
	key = strings.ToLower(key)
	return strings.TrimPrefix(key, strings.ToLower(userPropPrefix))
}
