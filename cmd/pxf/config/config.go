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

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/frankgh/pxf/pkg/etcd"
	"github.com/frankgh/pxf/pkg/initmgr"
	otelCfg "github.com/frankgh/pxf/pkg/logging/otel/config"
	"github.com/frankgh/pxf/pkg/util"
)

var (
	Initializer initmgr.IInitializer = initmgr.NewInitializer(initialize, finalize)

	Conf = Config{
		LogLevel: "info",
		Listener: ListenerConfig{
			Addr:            ":5888",
			MaxConns:        1024,
			ReadTimeout:     util.Duration{Duration: 5 * time.Second},
			WriteTimeout:    util.Duration{Duration: 5 * time.Second},
			IdleTimeout:     util.Duration{Duration: 120 * time.Second},
			ShutdownTimeout: util.Duration{Duration: 10 * time.Second},
		},
		Profiles: ProfilesConfig{
			EtcdName: "pxf",
		},
		Etcd: *etcd.NewConfig("127.0.0.1:2379"),
		Otel: otelCfg.Config{
			ServiceName: "pxf-gateway",
		},
	}
)

type ListenerConfig struct {
	Addr            string
	MaxConns        int
	ReadTimeout     util.Duration
	WriteTimeout    util.Duration
	IdleTimeout     util.Duration
	ShutdownTimeout util.Duration
}

// ProfilesConfig tells where the profile catalog comes from. The built-in
// profiles are always loaded; File and etcd entries are merged over them,
// in that order.
type ProfilesConfig struct {
	File        string
	EtcdEnabled bool
	EtcdName    string
}

type Config struct {
	RootDir  string
	LogLevel string

	Listener ListenerConfig
	Profiles ProfilesConfig
	Etcd     etcd.Config
	Otel     otelCfg.Config
}

func (c *Config) Dump() {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(c); err != nil {
		glog.Warningf("dump config: %s", err)
		return
	}
	glog.Info(buf.String())
}

func (c *Config) SetDefaultIfNotDefined() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Listener.Addr == "" {
		c.Listener.Addr = ":5888"
	}
	if c.Listener.MaxConns <= 0 {
		c.Listener.MaxConns = 1024
	}
	if c.Listener.ShutdownTimeout.Duration <= 0 {
		c.Listener.ShutdownTimeout.Duration = 10 * time.Second
	}
	if c.Profiles.EtcdName == "" {
		c.Profiles.EtcdName = "pxf"
	}
	c.Etcd.SetDefaultIfNotDefined()
	c.Otel.SetDefaultIfNotDefined()
}

// set path to be under Config.RootDir if it is not absolute
func (c *Config) validatePath(path *string) {
	if path != nil && len(*path) != 0 && !filepath.IsAbs(*path) {
		*path = filepath.Clean(c.RootDir + "/" + *path)
	}
}

func (c *Config) Validate() (err error) {
	c.SetDefaultIfNotDefined()
	if c.Profiles.EtcdEnabled && len(c.Etcd.Endpoints) == 0 {
		err = fmt.Errorf("etcd enabled without endpoints")
	} else {
		err = c.Otel.Validate()
	}
	if err != nil {
		glog.Errorf("config error: %s", err)
	}
	return
}

// LoadFromFile decodes file over the defaults in Conf. Relative paths in the
// file are taken relative to RootDir, which defaults to the directory of the
// file.
func LoadFromFile(file string) (err error) {
	if _, err = toml.DecodeFile(file, &Conf); err != nil {
		return errors.Wrapf(err, "load config %s", file)
	}
	if len(Conf.RootDir) == 0 {
		Conf.RootDir = filepath.Dir(file)
	}
	Conf.validatePath(&Conf.Profiles.File)
	return Conf.Validate()
}

func initialize(args ...interface{}) (err error) {
	sz := len(args)
	if sz < 1 {
		err = fmt.Errorf("a string config file name argument expected")
		return
	}
	filename, ok := args[0].(string)
	if !ok {
		err = fmt.Errorf("wrong argument type. a string config file name expected")
		return
	}
	if len(filename) == 0 {
		if len(Conf.RootDir) == 0 {
			Conf.RootDir = filepath.Dir(os.Args[0])
		}
		Conf.validatePath(&Conf.Profiles.File)
		return Conf.Validate()
	}
	return LoadFromFile(filename)
}

func finalize() {
}
