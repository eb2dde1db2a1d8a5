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
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/params"
)

// reader reads typed values out of a parameter namespace. Every failure is
// an *errors.Error whose message is returned to the client unchanged.
type reader struct {
	ns *params.Namespace
}

func malformed(err error) error {
	return errors.NewError(errors.KMalformedNumber, err.Error())
}

func (r reader) requiredString(key string) (string, error) {
	return r.ns.GetRequired(key)
}

func (r reader) optionalString(key string, def string) string {
	return r.ns.GetOptional(key, def)
}

func (r reader) requiredInt(key string) (int, error) {
	s, err := r.ns.GetRequired(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(err)
	}
	return v, nil
}

func (r reader) optionalInt(key string, def int) (int, error) {
	s, ok := r.ns.Get(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(err)
	}
	return v, nil
}

// boundedDouble parses key as a float in the range (low, high]. The bounds
// are passed as they should appear in the error message.
func (r reader) boundedDouble(key string, low string, high string) (float64, error) {
	s, err := r.ns.GetRequired(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformed(err)
	}
	lo, _ := strconv.ParseFloat(low, 64)
	hi, _ := strconv.ParseFloat(high, 64)
	if math.IsNaN(v) || v <= lo || v > hi {
		return 0, errors.Errorf(errors.KOutOfRange,
			"Wrong value '%v'. %s must be a value between %s and %s", v, displayName(key), low, high)
	}
	return v, nil
}

func (r reader) positiveInt(key string) (int, error) {
	v, err := r.requiredInt(key)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.Errorf(errors.KNotPositive,
			"Wrong value '%d'. %s must be a positive integer", v, displayName(key))
	}
	return v, nil
}

// triStateBoolean returns def when key is absent.
func (r reader) triStateBoolean(key string, def bool) (bool, error) {
	s, ok := r.ns.Get(key)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errors.Errorf(errors.KIllegalBoolean, "Illegal boolean value '%s'. Usage: [TRUE|FALSE]", s)
}

// base64Blob returns nil when key is absent. what names the blob in the
// error message.
func (r reader) base64Blob(key string, what string) ([]byte, error) {
	s, ok := r.ns.Get(key)
	if !ok {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Errorf(errors.KMalformedBase64,
			"%s must be Base64 encoded.(Bad value: %s)", what, s)
	}
	return b, nil
}

// paired checks that either both or none of the keys are present.
func (r reader) paired(a string, b string) error {
	if r.ns.Contains(a) != r.ns.Contains(b) {
		return errors.Errorf(errors.KPairedParameterMissing,
			"Missing parameter: %s and %s must be set together", displayName(a), displayName(b))
	}
	return nil
}

// displayName is the key as users write it in table options.
func displayName(key string) string {
	return strings.TrimPrefix(key, userPropPrefix)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
