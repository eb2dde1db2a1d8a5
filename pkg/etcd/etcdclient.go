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

package etcd

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
)

const TagCompDelimiter = "/"

var (
	errNotInitialized = errors.New("etcd client not initialized")
)

type IWatchHandler interface {
	OnEvent(e ...*clientv3.Event)
}

// etcd client wrapper. All keys are relative to
// <EtcdKeyPrefix><name>/.
type EtcdClient struct {
	config    Config
	keyPrefix string
	client    *clientv3.Client
	doneCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewEtcdClient(cfg *Config, name string) (*EtcdClient, error) {
	var client *clientv3.Client
	var err error

	for i := 0; i < cfg.MaxConnectAttempts; i++ {
		client, err = clientv3.New(cfg.Config)
		if err == nil {
			break
		}
		if client != nil {
			client.Close()
		}
		if i >= cfg.MaxConnectAttempts-1 {
			glog.Warningf("etcd: %v.", err)
			return nil, err
		}

		glog.Warningf("etcd: %v. Retry ...", err)
		backoff := (i + 1) * 2
		if backoff > cfg.MaxConnectBackoff {
			backoff = cfg.MaxConnectBackoff
		}
		time.Sleep(time.Duration(backoff) * time.Second)
	}
	if client == nil {
		return nil, errNotInitialized
	}

	etcdcli := &EtcdClient{
		client: client,
		config: *cfg,
		doneCh: make(chan struct{}),
	}
	etcdcli.keyPrefix = cfg.EtcdKeyPrefix + name + TagCompDelimiter
	etcdcli.client.KV = namespace.NewKV(client.KV, etcdcli.keyPrefix)
	etcdcli.client.Watcher = namespace.NewWatcher(client.Watcher, etcdcli.keyPrefix)
	return etcdcli, nil
}

func (e *EtcdClient) KeyPrefix() string {
	return e.keyPrefix
}

func (e *EtcdClient) Close() {
	e.closeOnce.Do(func() {
		close(e.doneCh)
		e.wg.Wait()
		if e.client != nil {
			e.client.Close()
		}
	})
}

// GetWithPrefix returns every key/value under key, sorted by key.
func (e *EtcdClient) GetWithPrefix(ctx context.Context, key string) (kvs []*mvccpb.KeyValue, err error) {
	if e.client == nil {
		return nil, errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout.Duration)
	defer cancel()

	resp, err := e.client.KV.Get(ctx, key, clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		glog.Errorf("etcd get: key=%s%s err=%v", e.keyPrefix, key, err)
		return nil, err
	}
	return resp.Kvs, nil
}

func (e *EtcdClient) PutValue(ctx context.Context, key string, val string) (err error) {
	if e.client == nil {
		return errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout.Duration)
	defer cancel()
	_, err = e.client.KV.Put(ctx, key, val)
	return
}

// Watch calls handler for every batch of events on key until cancel is
// called or the client is closed.
func (e *EtcdClient) Watch(key string, handler IWatchHandler, opts ...clientv3.OpOption) (cancel context.CancelFunc, err error) {
	if e.client == nil {
		err = errNotInitialized
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := e.client.Watch(ctx, key, opts...)
	e.wg.Add(1)
	go func() {
		glog.Infof("etcd: watching %s%s", e.keyPrefix, key)
		defer e.wg.Done()
		for {
			select {
			case r, ok := <-ch:
				if !ok {
					return
				}
				if err := r.Err(); err != nil {
					glog.Warningf("etcd watch: %v", err)
					continue
				}
				if len(r.Events) != 0 {
					handler.OnEvent(r.Events...)
				}
			case <-ctx.Done():
				glog.Info("etcd: watcher cancelled")
				return
			case <-e.doneCh:
				cancel()
				return
			}
		}
	}()
	return cancel, nil
}
