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
	"fmt"

	"github.com/golang/glog"
)

type HistBuckets struct {
	Decode []float64
}

type Config struct {
	Host             string
	Port             uint32
	UrlPath          string
	Environment      string
	ServiceName      string
	Enabled          bool
	Resolution       uint32
	UseTls           bool
	HistogramBuckets HistBuckets
}

func (c *Config) Validate() error {
	c.SetDefaultIfNotDefined()
	if c.Enabled && len(c.ServiceName) == 0 {
		return fmt.Errorf("otel: ServiceName is required")
	}
	return nil
}

func (c *Config) SetDefaultIfNotDefined() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 4318
	}
	if c.Resolution == 0 {
		c.Resolution = 60
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.UrlPath == "" {
		c.UrlPath = "/v1/metrics"
	}
	if c.HistogramBuckets.Decode == nil {
		c.HistogramBuckets.Decode = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100}
	}
}

func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Dump() {
	glog.Infof("Otel Enabled: %t", c.Enabled)
	glog.Infof("Otel Host: %s", c.Host)
	glog.Infof("Otel Port: %d", c.Port)
	glog.Infof("Otel UrlPath: %s", c.UrlPath)
	glog.Infof("Otel Environment: %s", c.Environment)
	glog.Infof("Otel ServiceName: %s", c.ServiceName)
	glog.Infof("Otel Resolution: %d", c.Resolution)
	glog.Infof("Otel UseTls: %t", c.UseTls)
	glog.Info("Otel Decode Bucket: ", c.HistogramBuckets.Decode)
}
