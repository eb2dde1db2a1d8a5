package app

import (
	"context"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/frankgh/pxf/cmd/pxf/config"
	"github.com/frankgh/pxf/pkg/etcd"
	"github.com/frankgh/pxf/pkg/profile"
)

// catalog is the profile registry along with whatever keeps it current.
type catalog struct {
	registry *profile.Registry
	etcdCli  *etcd.EtcdClient
	cancel   context.CancelFunc
}

// loadCatalog builds the registry from the built-in profiles, then the
// profile file, then etcd when enabled. With watch set, etcd changes are
// applied as they come.
func loadCatalog(ctx context.Context, cfg *config.Config, watch bool) (c *catalog, err error) {
	base := profile.Builtin()
	if cfg.Profiles.File != "" {
		var overrides []*profile.Profile
		if overrides, err = profile.LoadFile(cfg.Profiles.File); err != nil {
			return
		}
		base = profile.Merge(base, overrides)
	}
	c = &catalog{}
	if c.registry, err = profile.NewRegistry(base...); err != nil {
		return nil, err
	}
	if !cfg.Profiles.EtcdEnabled {
		return
	}

	if c.etcdCli, err = etcd.NewEtcdClient(&cfg.Etcd, cfg.Profiles.EtcdName); err != nil {
		return nil, errors.Wrap(err, "connect to etcd")
	}
	src := profile.NewEtcdSource(c.etcdCli, c.registry, base)
	rctx, cancel := context.WithTimeout(ctx, cfg.Etcd.RequestTimeout.Duration)
	err = src.Load(rctx)
	cancel()
	if err != nil {
		c.Close()
		return nil, err
	}
	if watch {
		if c.cancel, err = src.Watch(); err != nil {
			c.Close()
			return nil, errors.Wrap(err, "watch etcd profiles")
		}
	}
	glog.Infof("profile catalog loaded from etcd %s", c.etcdCli.KeyPrefix())
	return
}

func (c *catalog) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.etcdCli != nil {
		c.etcdCli.Close()
	}
}
