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

// Package profile implements the named parameter presets a request may opt
// into with OPTIONS-PROFILE, the registry holding them and the resolver
// merging a preset into the request parameters.
package profile

import (
	"sort"
	"strings"
)

// Plugin kinds a profile may name.
const (
	PluginFragmenter = "fragmenter"
	PluginAccessor   = "accessor"
	PluginResolver   = "resolver"
	PluginMetadata   = "metadata"
)

var pluginKinds = []string{PluginFragmenter, PluginAccessor, PluginResolver, PluginMetadata}

// PluginKinds returns the plugin kinds a profile may define.
func PluginKinds() []string {
	return append([]string(nil), pluginKinds...)
}

func isPluginKind(kind string) bool {
	for _, k := range pluginKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// PluginKey returns the request parameter carrying the plugin of the given kind.
func PluginKey(kind string) string {
	return "OPTIONS-" + strings.ToUpper(kind)
}

type (
	// Option is one preset parameter of a profile, key in its original case.
	Option struct {
		Key   string
		Value string
	}

	// Profile is immutable once built.
	Profile struct {
		name        string
		description string
		plugins     map[string]string
		options     []Option
	}
)

// NewProfile copies plugins and options. Plugin kinds are case-insensitive;
// options are kept in key order.
func NewProfile(name string, description string, plugins map[string]string, options map[string]string) *Profile {
	p := &Profile{
		name:        name,
		description: description,
		plugins:     make(map[string]string, len(plugins)),
		options:     make([]Option, 0, len(options)),
	}
	for k, v := range plugins {
		p.plugins[strings.ToLower(k)] = v
	}
	for k, v := range options {
		p.options = append(p.options, Option{Key: k, Value: v})
	}
	sort.Slice(p.options, func(i, j int) bool {
		return p.options[i].Key < p.options[j].Key
	})
	return p
}

func (p *Profile) Name() string {
	return p.name
}

func (p *Profile) Description() string {
	return p.description
}

// Plugin returns the plugin name of the given kind.
func (p *Profile) Plugin(kind string) (name string, ok bool) {
	name, ok = p.plugins[strings.ToLower(kind)]
	return
}

// Options returns a copy of the preset parameters.
func (p *Profile) Options() []Option {
	return append([]Option(nil), p.options...)
}

func (p *Profile) equal(o *Profile) bool {
	if p.name != o.name || p.description != o.description ||
		len(p.plugins) != len(o.plugins) || len(p.options) != len(o.options) {
		return false
	}
	for k, v := range p.plugins {
		if w, ok := o.plugins[k]; !ok || w != v {
			return false
		}
	}
	for i := range p.options {
		if p.options[i] != o.options[i] {
			return false
		}
	}
	return true
}

// fields flattens the profile for fingerprinting.
func (p *Profile) fields() []string {
	strs := []string{p.name, p.description}
	for _, kind := range pluginKinds {
		if v, ok := p.plugins[kind]; ok {
			strs = append(strs, kind, v)
		}
	}
	for _, o := range p.options {
		strs = append(strs, o.Key, o.Value)
	}
	return strs
}
