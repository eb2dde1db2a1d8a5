// Package builtin registers the plugins shipped with the gateway.
package builtin

import (
	"github.com/frankgh/pxf/pkg/plugins"
	"github.com/frankgh/pxf/pkg/plugins/hbase"
	"github.com/frankgh/pxf/pkg/plugins/hdfs"
	"github.com/frankgh/pxf/pkg/request"
)

var (
	splittableAccessors = []string{
		"hdfs.LineBreakAccessor",
		"hdfs.AvroFileAccessor",
		"hdfs.SequenceFileAccessor",
		"parquet.ParquetFileAccessor",
	}
	atomicAccessors = []string{
		"hdfs.QuotedLineBreakAccessor",
	}
	hbasePlugins = []string{
		"hbase.HBaseAccessor",
		"hbase.HBaseResolver",
	}
	passThrough = []string{
		"hdfs.StringPassResolver",
		"hdfs.AvroResolver",
		"hdfs.WritableResolver",
		"parquet.ParquetResolver",
	}
)

func Register(r *plugins.Registry) {
	for _, name := range splittableAccessors {
		r.Register(name, factory(hdfs.NewSplittableAccessor))
	}
	for _, name := range atomicAccessors {
		r.Register(name, factory(hdfs.NewAtomicAccessor))
	}
	for _, name := range hbasePlugins {
		r.Register(name, factory(hbase.NewTupleDescription))
	}
	for _, name := range passThrough {
		r.Register(name, func(d *request.Descriptor) (plugins.IPlugin, error) {
			return plugins.NewPlugin(d), nil
		})
	}
}

// factory adapts a constructor so that a failed one yields a nil IPlugin.
func factory[T plugins.IPlugin](newFn func(*request.Descriptor) (T, error)) plugins.Factory {
	return func(d *request.Descriptor) (plugins.IPlugin, error) {
		p, err := newFn(d)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() *plugins.Registry {
	r := plugins.NewRegistry()
	Register(r)
	return r
}
