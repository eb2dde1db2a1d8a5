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
	"strconv"
	"strings"

	"github.com/frankgh/pxf/pkg/errors"
)

// RecordKeyColumn is the name of the column carrying the row key of
// key-value stores.
const RecordKeyColumn = "recordkey"

type ColumnDescriptor struct {
	name     string
	typeCode int
	typeName string
	index    int
	typeMods []int
}

func NewColumnDescriptor(name string, typeCode int, index int, typeName string, typeMods []int) ColumnDescriptor {
	c := ColumnDescriptor{
		name:     name,
		typeCode: typeCode,
		typeName: typeName,
		index:    index,
	}
	if len(typeMods) != 0 {
		c.typeMods = append([]int(nil), typeMods...)
	}
	return c
}

func (c ColumnDescriptor) Name() string { return c.name }
func (c ColumnDescriptor) TypeCode() int { return c.typeCode }
func (c ColumnDescriptor) TypeName() string { return c.typeName }
func (c ColumnDescriptor) Index() int { return c.index }

// TypeModifiers returns a copy of the column's type modifiers, possibly empty.
func (c ColumnDescriptor) TypeModifiers() []int {
	return append([]int{}, c.typeMods...)
}

func (c ColumnDescriptor) IsKeyColumn() bool {
	return strings.EqualFold(c.name, RecordKeyColumn)
}

func (c ColumnDescriptor) String() string {
	return "ColumnDescriptor[name=" + c.name + ",typeCode=" + strconv.Itoa(c.typeCode) +
		",typeName=" + c.typeName + ",index=" + strconv.Itoa(c.index) + "]"
}

// buildColumns reads ATTRS column definitions. A negative count yields none.
func (r reader) buildColumns() (columns []ColumnDescriptor, recordKey int, err error) {
	recordKey = -1
	var n int
	if n, err = r.requiredInt(KeyAttrs); err != nil {
		return
	}
	if n <= 0 {
		return
	}
	columns = make([]ColumnDescriptor, 0, r.capacity(n))
	for i := 0; i < n; i++ {
		var c ColumnDescriptor
		if c, err = r.buildColumn(i); err != nil {
			return nil, -1, err
		}
		if recordKey < 0 && c.IsKeyColumn() {
			recordKey = i
		}
		columns = append(columns, c)
	}
	return
}

func (r reader) buildColumn(i int) (c ColumnDescriptor, err error) {
	var (
		name     string
		typeCode int
		typeName string
		mods     []int
	)
	if name, err = r.requiredString(attrNameKey(i)); err != nil {
		return
	}
	if typeCode, err = r.requiredInt(attrTypeCodeKey(i)); err != nil {
		return
	}
	if typeName, err = r.requiredString(attrTypeNameKey(i)); err != nil {
		return
	}
	if mods, err = r.typeModifiers(i); err != nil {
		return
	}
	c = ColumnDescriptor{name: name, typeCode: typeCode, typeName: typeName, index: i, typeMods: mods}
	return
}

func (r reader) typeModifiers(i int) ([]int, error) {
	countKey := typeModCountKey(i)
	s, ok := r.ns.Get(countKey)
	if !ok {
		return nil, nil
	}
	count, err := nonNegative(countKey, s)
	if err != nil || count == 0 {
		return nil, err
	}
	mods := make([]int, 0, r.capacity(count))
	for j := 0; j < count; j++ {
		key := typeModKey(i, j)
		if s, err = r.requiredString(key); err != nil {
			return nil, err
		}
		var mod int
		if mod, err = nonNegative(key, s); err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

// capacity bounds a declared count by the number of parameters: every
// column or modifier takes at least one.
func (r reader) capacity(n int) int {
	if l := r.ns.Len(); n > l {
		return l
	}
	return n
}

func nonNegative(key string, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf(errors.KMalformedNumber, "%s must be a positive integer", key)
	}
	if v < 0 {
		return 0, errors.Errorf(errors.KNotPositive, "%s cann't be negative", key)
	}
	return v, nil
}
