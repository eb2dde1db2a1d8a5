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

package hbase

import (
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/frankgh/pxf/pkg/plugins"
	"github.com/frankgh/pxf/pkg/request"
)

// ColumnDescriptor is a table column with the HBase column it reads.
type ColumnDescriptor struct {
	request.ColumnDescriptor
	family    []byte
	qualifier []byte
}

func newColumnDescriptor(c request.ColumnDescriptor, hbaseName string) ColumnDescriptor {
	hc := ColumnDescriptor{ColumnDescriptor: c}
	if c.IsKeyColumn() {
		return hc
	}
	family, qualifier, found := strings.Cut(hbaseName, ":")
	hc.family = []byte(family)
	if found {
		hc.qualifier = []byte(qualifier)
	}
	return hc
}

// ColumnFamily is nil for the record key column.
func (c ColumnDescriptor) ColumnFamily() []byte { return c.family }

func (c ColumnDescriptor) Qualifier() []byte { return c.qualifier }

// TableMapping maps lower-case table column names to HBase columns
// ("family:qualifier"). The fragmenter ships it as fragment user data.
type TableMapping map[string]string

func (m TableMapping) Encode() ([]byte, error) {
	fields := make(map[string]interface{}, len(m))
	for k, v := range m {
		fields[strings.ToLower(k)] = v
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode table mapping")
	}
	return proto.Marshal(st)
}

func DecodeTableMapping(b []byte) (TableMapping, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(b, &st); err != nil {
		return nil, errors.Wrap(err, "decode table mapping")
	}
	m := make(TableMapping, len(st.GetFields()))
	for k, v := range st.GetFields() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, errors.Errorf("table mapping of column %s is not a string", k)
		}
		m[strings.ToLower(k)] = s.StringValue
	}
	return m, nil
}

// TupleDescription is the row layout of an HBase request.
type TupleDescription struct {
	plugins.Plugin
	columns []ColumnDescriptor
}

// NewTupleDescription maps every column of desc to its HBase column. A
// column without an entry in the table mapping is read under its own name;
// the record key column is never mapped.
func NewTupleDescription(desc *request.Descriptor) (*TupleDescription, error) {
	var mapping TableMapping
	if ud := desc.FragmentUserData(); ud != nil {
		var err error
		if mapping, err = DecodeTableMapping(ud); err != nil {
			return nil, errors.Wrap(err, "read table mapping from fragment user data")
		}
	}
	t := &TupleDescription{Plugin: plugins.NewPlugin(desc)}
	for _, c := range desc.Columns() {
		name := c.Name()
		if mapped, ok := mapping[strings.ToLower(name)]; ok && !c.IsKeyColumn() {
			name = mapped
		}
		t.columns = append(t.columns, newColumnDescriptor(c, name))
	}
	return t, nil
}

func (t *TupleDescription) NumColumns() int {
	return len(t.columns)
}

func (t *TupleDescription) Column(i int) ColumnDescriptor {
	return t.columns[i]
}
