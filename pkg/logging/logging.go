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

package logging

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
)

var (
	LOG_ERROR   glog.Verbose
	LOG_WARN    glog.Verbose
	LOG_INFO    glog.Verbose
	LOG_DEBUG   glog.Verbose
	LOG_VERBOSE glog.Verbose

	appName string
)

// Initialize is the initmgr entry point: args are the log level and the
// application name.
func Initialize(args ...interface{}) (err error) {
	if len(args) < 2 {
		err = fmt.Errorf("two arguments expected")
		return
	}
	var level, name string
	var ok bool
	if level, ok = args[0].(string); !ok {
		err = fmt.Errorf("a string log level expected")
		return
	}
	if name, ok = args[1].(string); !ok {
		err = fmt.Errorf("a string appname expected")
		return
	}
	InitLogging(level, name)
	return
}

func Finalize() {
	glog.Flush()
}

// InitLogging maps level (error, warning, info, debug or verbose) to the
// glog verbosity and sends the logs to stderr.
func InitLogging(level string, name string) {
	flag.Lookup("logtostderr").Value.Set("true")
	appName = name

	var glevel string
	switch strings.ToLower(level) {
	case "error":
		glevel = "1"
	case "warning":
		glevel = "2"
	case "debug":
		glevel = "4"
	case "verbose":
		glevel = "5"
	default:
		glevel = "3"
	}
	flag.Lookup("v").Value.Set(glevel)

	LOG_ERROR = glog.V(1)
	LOG_WARN = glog.V(2)
	LOG_INFO = glog.V(3)
	LOG_DEBUG = glog.V(4)
	LOG_VERBOSE = glog.V(5)
}

type KeyValueBuffer struct {
	bytes.Buffer
	delimiter     byte
	pairDelimiter byte
}

func NewKVBufferForLog() *KeyValueBuffer {
	return &KeyValueBuffer{
		delimiter:     '=',
		pairDelimiter: ',',
	}
}

// NewKVBuffer uses the delimiters of a URL query.
func NewKVBuffer() *KeyValueBuffer {
	return &KeyValueBuffer{
		pairDelimiter: '&',
		delimiter:     '=',
	}
}

var (
	logDataKeyRid           = []byte("rid")
	logDataKeyUser          = []byte("user")
	logDataKeySegment       = []byte("seg")
	logDataKeyProfile       = []byte("prof")
	logDataKeySource        = []byte("src")
	logDataKeyStatus        = []byte("st")
	logDataKeyErrKind       = []byte("m_err")
	logDataKeyReqHandleTime = []byte("rht")
	logDataKeyNumColumns    = []byte("cols")
	logDataKeyAccessor      = []byte("acc")
)

func (b *KeyValueBuffer) AddBytes(key []byte, value []byte) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.Write(value)
	return b
}

func (b *KeyValueBuffer) Add(key []byte, value string) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.WriteString(value)
	return b
}

func (b *KeyValueBuffer) AddInt(key []byte, value int) *KeyValueBuffer {
	return b.Add(key, strconv.Itoa(value))
}

func (b *KeyValueBuffer) AddReqIdString(id string) *KeyValueBuffer {
	return b.Add(logDataKeyRid, id)
}

func (b *KeyValueBuffer) AddUser(user string) *KeyValueBuffer {
	if user != "" {
		b.Add(logDataKeyUser, user)
	}
	return b
}

// AddSegment logs the segment as id/count.
func (b *KeyValueBuffer) AddSegment(id int, count int) *KeyValueBuffer {
	return b.Add(logDataKeySegment, strconv.Itoa(id)+"/"+strconv.Itoa(count))
}

func (b *KeyValueBuffer) AddProfile(name string) *KeyValueBuffer {
	if name != "" {
		b.Add(logDataKeyProfile, name)
	}
	return b
}

func (b *KeyValueBuffer) AddDataSource(src string) *KeyValueBuffer {
	return b.Add(logDataKeySource, src)
}

func (b *KeyValueBuffer) AddAccessor(name string) *KeyValueBuffer {
	return b.Add(logDataKeyAccessor, name)
}

func (b *KeyValueBuffer) AddNumColumns(n int) *KeyValueBuffer {
	return b.AddInt(logDataKeyNumColumns, n)
}

func (b *KeyValueBuffer) AddStatus(st string) *KeyValueBuffer {
	return b.Add(logDataKeyStatus, st)
}

func (b *KeyValueBuffer) AddErrKind(kind string) *KeyValueBuffer {
	return b.Add(logDataKeyErrKind, kind)
}

// AddRequestHandleTime logs rht in microseconds.
func (b *KeyValueBuffer) AddRequestHandleTime(rht time.Duration) *KeyValueBuffer {
	return b.AddInt(logDataKeyReqHandleTime, int(rht/time.Microsecond))
}

func LogServerStart(addr string) {
	glog.InfoDepth(1, fmt.Sprintf("%s (pid: %d) listening on %s", appName, os.Getpid(), addr))
}

func LogServerExit() {
	glog.InfoDepth(1, fmt.Sprintf("%s (pid: %d) stopped", appName, os.Getpid()))
}
