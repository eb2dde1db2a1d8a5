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

/*
Package util implements some utility functions.
*/
package util

import (
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/spaolacci/murmur3"
)

func Murmur3Hash(data []byte) uint32 {
	return murmur3.Sum32(data)
}

// Murmur3Fingerprint hashes the given strings in order. Each string is
// terminated by a zero byte so that ("ab","c") and ("a","bc") differ.
func Murmur3Fingerprint(strs ...string) uint32 {
	h := murmur3.New32()
	sep := []byte{0}
	for _, s := range strs {
		h.Write([]byte(s))
		h.Write(sep)
	}
	return h.Sum32()
}

// NewRequestId returns a time-based uuid string used to correlate the log
// lines of one request.
func NewRequestId() string {
	return uuid.NewV1().String()
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() (text []byte, err error) {
	text = []byte(d.Duration.String())
	return
}
