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
	"github.com/frankgh/pxf/pkg/plugins"
	"github.com/frankgh/pxf/pkg/request"
)

// SplittableAccessor reads the byte range of its file split. Every segment
// with a fragment does work.
type SplittableAccessor struct {
	plugins.Plugin
	split FileSplit
}

func NewSplittableAccessor(desc *request.Descriptor) (*SplittableAccessor, error) {
	split, err := ParseFileSplit(desc)
	if err != nil {
		return nil, err
	}
	return &SplittableAccessor{Plugin: plugins.NewPlugin(desc), split: split}, nil
}

func (a *SplittableAccessor) Split() FileSplit {
	return a.split
}

func (a *SplittableAccessor) IsThreadSafe() bool {
	return isThreadSafe(a.Plugin)
}

// AtomicAccessor reads a whole file through the stream API. Files that
// cannot be split would otherwise be returned once per segment, so only the
// segment holding the split that starts at offset 0 reads.
type AtomicAccessor struct {
	plugins.Plugin
	split FileSplit
}

func NewAtomicAccessor(desc *request.Descriptor) (*AtomicAccessor, error) {
	split, err := ParseFileSplit(desc)
	if err != nil {
		return nil, err
	}
	return &AtomicAccessor{Plugin: plugins.NewPlugin(desc), split: split}, nil
}

func (a *AtomicAccessor) Split() FileSplit {
	return a.split
}

func (a *AtomicAccessor) IsWorkingSegment() bool {
	return a.split.Start == 0
}

func (a *AtomicAccessor) IsThreadSafe() bool {
	return isThreadSafe(a.Plugin)
}

func isThreadSafe(p plugins.Plugin) bool {
	desc := p.Descriptor()
	codec, _ := desc.UserProperty(PropCompressionCodec)
	return desc.IsThreadSafe() && IsThreadSafe(desc.DataSource(), codec)
}
