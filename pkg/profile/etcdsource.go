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

package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/frankgh/pxf/pkg/etcd"
)

// Layout of a profile catalog in etcd, relative to the client key prefix:
//
//	profiles/<name>/description
//	profiles/<name>/plugins/<kind>
//	profiles/<name>/options/<key>
const (
	TagProfiles    = "profiles"
	TagDescription = "description"
	TagPlugins     = "plugins"
	TagOptions     = "options"

	kReloadTimeout = 5 * time.Second
)

// EtcdSource keeps a Registry in sync with a profile catalog stored in
// etcd. Profiles found in etcd are merged over the base profiles.
type EtcdSource struct {
	cli      *etcd.EtcdClient
	registry *Registry
	base     []*Profile
}

func NewEtcdSource(cli *etcd.EtcdClient, registry *Registry, base []*Profile) *EtcdSource {
	return &EtcdSource{cli: cli, registry: registry, base: base}
}

// Load reads the catalog from etcd and reloads the registry.
func (s *EtcdSource) Load(ctx context.Context) error {
	kvs, err := s.cli.GetWithPrefix(ctx, TagProfiles+etcd.TagCompDelimiter)
	if err != nil {
		return errors.Wrap(err, "read profiles from etcd")
	}
	profiles, err := ParseEtcdEntries(kvs)
	if err != nil {
		return err
	}
	_, err = s.registry.Reload(Merge(s.base, profiles))
	return err
}

// Watch reloads the registry on every change under the catalog prefix.
func (s *EtcdSource) Watch() (context.CancelFunc, error) {
	return s.cli.Watch(TagProfiles+etcd.TagCompDelimiter, s, clientv3.WithPrefix())
}

func (s *EtcdSource) OnEvent(evs ...*clientv3.Event) {
	for _, ev := range evs {
		glog.V(2).Infof("etcd profile event: type=%s key=%q", ev.Type, ev.Kv.Key)
	}
	ctx, cancel := context.WithTimeout(context.Background(), kReloadTimeout)
	defer cancel()
	if err := s.Load(ctx); err != nil {
		glog.Errorf("profile reload failed, keeping current catalog: %v", err)
	}
}

// ParseEtcdEntries builds profiles from the key/values under profiles/.
func ParseEtcdEntries(kvs []*mvccpb.KeyValue) ([]*Profile, error) {
	type builder struct {
		description string
		plugins     map[string]string
		options     map[string]string
	}
	var names []string
	builders := make(map[string]*builder)

	for _, kv := range kvs {
		key := string(kv.Key)
		parts := strings.SplitN(key, etcd.TagCompDelimiter, 4)
		if len(parts) < 3 || parts[0] != TagProfiles || parts[1] == "" {
			return nil, fmt.Errorf("malformed profile key '%s'", key)
		}
		name := parts[1]
		b, found := builders[name]
		if !found {
			b = &builder{plugins: make(map[string]string), options: make(map[string]string)}
			builders[name] = b
			names = append(names, name)
		}
		switch {
		case parts[2] == TagDescription && len(parts) == 3:
			b.description = string(kv.Value)
		case parts[2] == TagPlugins && len(parts) == 4:
			kind := strings.ToLower(parts[3])
			if !isPluginKind(kind) {
				return nil, fmt.Errorf("profile '%s': unknown plugin kind '%s'", name, parts[3])
			}
			b.plugins[kind] = string(kv.Value)
		case parts[2] == TagOptions && len(parts) == 4:
			b.options[parts[3]] = string(kv.Value)
		default:
			return nil, fmt.Errorf("malformed profile key '%s'", key)
		}
	}

	profiles := make([]*Profile, 0, len(names))
	for _, name := range names {
		b := builders[name]
		profiles = append(profiles, NewProfile(name, b.description, b.plugins, b.options))
	}
	return profiles, nil
}
