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
	"path"
	"strings"
)

// PropCompressionCodec is the user property naming the codec of the data.
const PropCompressionCodec = "compression_codec"

type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecBZip2
	CodecDeflate
	CodecSnappy
	CodecLz4
	CodecUnknown
)

var codecNames = [...]string{"none", "gzip", "bzip2", "deflate", "snappy", "lz4", "unknown"}

func (c Codec) String() string {
	if int(c) < len(codecNames) {
		return codecNames[c]
	}
	return "unknown"
}

var codecSuffixes = map[string]Codec{
	".gz":      CodecGzip,
	".bz2":     CodecBZip2,
	".deflate": CodecDeflate,
	".snappy":  CodecSnappy,
	".lz4":     CodecLz4,
}

// ParseCodec accepts short names ("bzip2") as well as Hadoop class names
// ("org.apache.hadoop.io.compress.BZip2Codec").
func ParseCodec(name string) Codec {
	if name == "" {
		return CodecNone
	}
	n := strings.ToLower(name)
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	n = strings.TrimSuffix(n, "codec")
	switch n {
	case "gzip", "gz":
		return CodecGzip
	case "bzip2", "bz2":
		return CodecBZip2
	case "deflate", "default":
		return CodecDeflate
	case "snappy":
		return CodecSnappy
	case "lz4":
		return CodecLz4
	}
	return CodecUnknown
}

// CodecFor picks the codec of dataSource from its file suffix.
func CodecFor(dataSource string) Codec {
	if c, ok := codecSuffixes[strings.ToLower(path.Ext(dataSource))]; ok {
		return c
	}
	return CodecNone
}

// IsThreadSafe reports whether dataSource can be read by concurrent
// requests. An explicit codec name wins over the file suffix. Only bzip2
// decompression is unsafe.
func IsThreadSafe(dataSource string, codecName string) bool {
	c := CodecFor(dataSource)
	if codecName != "" {
		c = ParseCodec(codecName)
	}
	return c != CodecBZip2
}
