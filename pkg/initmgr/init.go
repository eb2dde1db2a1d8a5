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

// Package initmgr runs the registered initializers in order of weight and
// finalizes them in reverse.
package initmgr

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	initializers initEntriesT
	mtx          sync.Mutex

	// Output receives the progress lines.
	Output io.Writer = os.Stderr
)

type entryT struct {
	initializer  IInitializer
	weight       int
	args         []interface{}
	initialized  bool
	finalizeOnce sync.Once
}

type initEntriesT []*entryT

type IInitializer interface {
	Name() string
	Initialize(args ...interface{}) error
	Finalize()
}

// Init initializes everything registered, once. On the first failure the
// initializers already done are finalized and the error is returned.
func Init() error {
	mtx.Lock()
	defer mtx.Unlock()

	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].weight < initializers[j].weight
	})
	for i, e := range initializers {
		if e.initialized {
			continue
		}
		name := e.initializer.Name()
		if err := e.initializer.Initialize(e.args...); err != nil {
			fmt.Fprintf(Output, "... [fail] initmgr.initialize %s\t (error: %s)\n", name, err.Error())
			finalizeBackwardsFrom(i - 1)
			return errors.Wrapf(err, "initialize %s", name)
		}
		e.initialized = true
		fmt.Fprintf(Output, "... [ok]   initmgr.initialize %s\n", name)
	}
	return nil
}

func finalizeBackwardsFrom(i int) {
	for ; i >= 0; i-- {
		e := initializers[i]
		if !e.initialized {
			continue
		}
		e.finalizeOnce.Do(func() {
			fmt.Fprintf(Output, "... initmgr.finalize %s\n", e.initializer.Name())
			e.initializer.Finalize()
		})
	}
}

func Finalize() {
	mtx.Lock()
	defer mtx.Unlock()
	finalizeBackwardsFrom(len(initializers) - 1)
}

func Register(rc IInitializer, args ...interface{}) {
	RegisterWithWeight(rc, len(initializers), args...)
}

func RegisterWithFuncs(initializeFunc func(args ...interface{}) error, finalizeFunc func(), args ...interface{}) {
	Register(NewInitializer(initializeFunc, finalizeFunc), args...)
}

func RegisterWithWeight(rc IInitializer, weight int, args ...interface{}) {
	mtx.Lock()
	defer mtx.Unlock()
	initializers = append(initializers, &entryT{initializer: rc, weight: weight, args: args})
}

// Reset forgets every registration.
func Reset() {
	mtx.Lock()
	defer mtx.Unlock()
	initializers = nil
}

type Initializer struct {
	name           string
	InitializeFunc func(args ...interface{}) error
	FinalizeFunc   func()
}

func (i *Initializer) Name() string {
	return i.name
}

func (i *Initializer) Initialize(args ...interface{}) error {
	if i.InitializeFunc != nil {
		return i.InitializeFunc(args...)
	}
	return nil
}

func (i *Initializer) Finalize() {
	if i.FinalizeFunc != nil {
		i.FinalizeFunc()
	}
}

// NewInitializer names the initializer after the package of initializeFunc.
func NewInitializer(initializeFunc func(args ...interface{}) error, finalizeFunc func()) IInitializer {
	name := runtime.FuncForPC(reflect.ValueOf(initializeFunc).Pointer()).Name()
	i := strings.LastIndex(name, ".")
	if i == -1 {
		name = "unknown package"
	} else {
		name = name[0:i]
	}
	return &Initializer{name, initializeFunc, finalizeFunc}
}
