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

// Package params implements the case-insensitive view over the X-GP-*
// request parameters.
package params

import (
	"net/http"
	"sort"
	"strings"

	"github.com/frankgh/pxf/pkg/errors"
)

// Prefix is the transport prefix carried by every request parameter.
const Prefix = "X-GP-"

// Namespace holds the request parameters keyed by their upper-cased name,
// stripped of Prefix.
//
// Note: a Namespace is built and consumed by one request; it is not
// goroutine safe.
type Namespace struct {
	kv map[string]string
}

// New builds a Namespace from raw parameters. Keys carrying Prefix are
// stripped of it. A later key folding onto an earlier one overwrites it.
func New(raw map[string]string) *Namespace {
	ns := &Namespace{kv: make(map[string]string, len(raw))}
	for k, v := range raw {
		ns.Put(StripPrefix(k), v)
	}
	return ns
}

// FromHeader builds a Namespace from the X-GP-* headers of an HTTP request.
// Other headers are ignored.
func FromHeader(h http.Header) *Namespace {
	ns := &Namespace{kv: make(map[string]string)}
	for k, values := range h {
		if !HasPrefix(k) || len(values) == 0 {
			continue
		}
		ns.Put(StripPrefix(k), values[0])
	}
	return ns
}

// HasPrefix reports whether key starts with Prefix, ignoring case.
func HasPrefix(key string) bool {
	return len(key) >= len(Prefix) && strings.EqualFold(key[:len(Prefix)], Prefix)
}

// StripPrefix removes Prefix from key if present.
func StripPrefix(key string) string {
	if HasPrefix(key) {
		return key[len(Prefix):]
	}
	return key
}

func normalize(key string) string {
	return strings.ToUpper(key)
}

func (n *Namespace) Get(key string) (value string, ok bool) {
	value, ok = n.kv[normalize(key)]
	return
}

// GetRequired returns the value of key, or a MissingParameter error.
func (n *Namespace) GetRequired(key string) (string, error) {
	if v, ok := n.kv[normalize(key)]; ok {
		return v, nil
	}
	return "", errors.MissingParameter(key)
}

func (n *Namespace) GetOptional(key string, def string) string {
	if v, ok := n.kv[normalize(key)]; ok {
		return v
	}
	return def
}

func (n *Namespace) Contains(key string) bool {
	_, ok := n.kv[normalize(key)]
	return ok
}

// Put sets the value of key, overwriting any previous value.
func (n *Namespace) Put(key string, value string) {
	if n.kv == nil {
		n.kv = make(map[string]string)
	}
	n.kv[normalize(key)] = value
}

// PutIfAbsent sets the value of key unless it is already present.
func (n *Namespace) PutIfAbsent(key string, value string) bool {
	if n.Contains(key) {
		return false
	}
	n.Put(key, value)
	return true
}

func (n *Namespace) Len() int {
	return len(n.kv)
}

// Keys returns the normalized keys in sorted order.
func (n *Namespace) Keys() []string {
	keys := make([]string, 0, len(n.kv))
	for k := range n.kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the parameters.
func (n *Namespace) Map() map[string]string {
	m := make(map[string]string, len(n.kv))
	for k, v := range n.kv {
		m[k] = v
	}
	return m
}
