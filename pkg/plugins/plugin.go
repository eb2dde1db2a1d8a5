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

// Package plugins holds what fragmenters, accessors and resolvers share:
// the descriptor of the request they serve and the registry that maps
// plugin names to implementations.
package plugins

import (
	"github.com/frankgh/pxf/pkg/request"
)

type IPlugin interface {
	IsThreadSafe() bool
}

// IWorkingSegment is implemented by plugins that read a whole data source
// and must run on a single segment only.
type IWorkingSegment interface {
	IsWorkingSegment() bool
}

type Plugin struct {
	desc *request.Descriptor
}

func NewPlugin(desc *request.Descriptor) Plugin {
	return Plugin{desc: desc}
}

func (p Plugin) Descriptor() *request.Descriptor {
	return p.desc
}

// IsThreadSafe reports the OPTIONS-THREAD-SAFE setting of the request.
func (p Plugin) IsThreadSafe() bool {
	return p.desc.IsThreadSafe()
}

// IsWorkingSegment reports whether p would do any work on this segment.
// Plugins that do not care run everywhere.
func IsWorkingSegment(p IPlugin) bool {
	if ws, ok := p.(IWorkingSegment); ok {
		return ws.IsWorkingSegment()
	}
	return true
}
