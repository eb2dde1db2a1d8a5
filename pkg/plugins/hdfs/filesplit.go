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

package hdfs

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/frankgh/pxf/pkg/request"
)

// FileSplit is the part of a file assigned to one fragment. The fragmenter
// sends it to the segments as fragment metadata.
type FileSplit struct {
	Path   string
	Start  int64
	Length int64
	Hosts  []string
}

const (
	fieldPath   = "path"
	fieldStart  = "start"
	fieldLength = "length"
	fieldHosts  = "hosts"
)

// maxExactOffset is the largest integer a structpb number holds exactly.
const maxExactOffset = 1 << 53

// Encode serializes the split as fragment metadata. Offsets are carried as
// decimal strings, structpb numbers being doubles.
func (s FileSplit) Encode() ([]byte, error) {
	hosts := make([]interface{}, len(s.Hosts))
	for i, h := range s.Hosts {
		hosts[i] = h
	}
	st, err := structpb.NewStruct(map[string]interface{}{
		fieldPath:   s.Path,
		fieldStart:  strconv.FormatInt(s.Start, 10),
		fieldLength: strconv.FormatInt(s.Length, 10),
		fieldHosts:  hosts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode file split")
	}
	return proto.Marshal(st)
}

// DecodeFileSplit is the inverse of FileSplit.Encode.
func DecodeFileSplit(b []byte) (s FileSplit, err error) {
	var st structpb.Struct
	if err = proto.Unmarshal(b, &st); err != nil {
		err = errors.Wrap(err, "decode file split")
		return
	}
	fields := st.GetFields()
	path, ok := fields[fieldPath]
	if !ok {
		err = errors.New("file split has no path")
		return
	}
	s.Path = path.GetStringValue()
	if s.Start, err = offsetField(fields, fieldStart); err != nil {
		return
	}
	if s.Length, err = offsetField(fields, fieldLength); err != nil {
		return
	}
	for _, h := range fields[fieldHosts].GetListValue().GetValues() {
		s.Hosts = append(s.Hosts, h.GetStringValue())
	}
	return
}

// offsetField reads a non-negative offset given as a decimal string, or as
// a number small enough to be exact.
func offsetField(fields map[string]*structpb.Value, name string) (int64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, errors.Errorf("file split has no %s", name)
	}
	var n int64
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		var err error
		if n, err = strconv.ParseInt(k.StringValue, 10, 64); err != nil {
			return 0, errors.Wrapf(err, "file split %s", name)
		}
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > maxExactOffset {
			return 0, errors.Errorf("file split %s %v is not an exact integer", name, f)
		}
		n = int64(f)
	default:
		return 0, errors.Errorf("file split %s is neither a string nor a number", name)
	}
	if n < 0 {
		return 0, errors.Errorf("file split %s %d is negative", name, n)
	}
	return n, nil
}

// ParseFileSplit reads the split out of the fragment metadata of desc.
func ParseFileSplit(desc *request.Descriptor) (FileSplit, error) {
	md := desc.FragmentMetadata()
	if md == nil {
		return FileSplit{}, errors.Errorf("fragment %d of %s carries no metadata", desc.DataFragment(), desc.DataSource())
	}
	s, err := DecodeFileSplit(md)
	if err != nil {
		return FileSplit{}, errors.Wrapf(err, "fragment %d of %s", desc.DataFragment(), desc.DataSource())
	}
	return s, nil
}
