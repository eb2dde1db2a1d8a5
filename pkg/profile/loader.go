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
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

type (
	catalogT struct {
		Profile []profileT `toml:"profile"`
	}
	profileT struct {
		Name        string            `toml:"name"`
		Description string            `toml:"description"`
		Plugins     map[string]string `toml:"plugins"`
		Options     map[string]string `toml:"options"`
	}
)

const builtinCatalog = `
[[profile]]
name = "HIVE"
description = "Hive tables of any storage format"
  [profile.plugins]
  fragmenter = "hive.HiveDataFragmenter"
  accessor = "hive.HiveAccessor"
  resolver = "hive.HiveResolver"
  metadata = "hive.HiveMetadataFetcher"

[[profile]]
name = "HiveText"
description = "Hive tables stored as TEXTFILE"
  [profile.plugins]
  fragmenter = "hive.HiveInputFormatFragmenter"
  accessor = "hive.HiveLineBreakAccessor"
  resolver = "hive.HiveStringPassResolver"
  metadata = "hive.HiveMetadataFetcher"

[[profile]]
name = "HiveRC"
description = "Hive tables stored as RCFILE"
  [profile.plugins]
  fragmenter = "hive.HiveInputFormatFragmenter"
  accessor = "hive.HiveRCFileAccessor"
  resolver = "hive.HiveColumnarSerdeResolver"
  metadata = "hive.HiveMetadataFetcher"

[[profile]]
name = "HiveORC"
description = "Hive tables stored as ORC"
  [profile.plugins]
  fragmenter = "hive.HiveInputFormatFragmenter"
  accessor = "hive.HiveORCAccessor"
  resolver = "hive.HiveORCSerdeResolver"
  metadata = "hive.HiveMetadataFetcher"

[[profile]]
name = "HdfsTextSimple"
description = "Delimited single line records from plain text files on HDFS"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.LineBreakAccessor"
  resolver = "hdfs.StringPassResolver"

[[profile]]
name = "HdfsTextMulti"
description = "Delimited records with quoted linefeeds from plain text files on HDFS"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.QuotedLineBreakAccessor"
  resolver = "hdfs.StringPassResolver"

[[profile]]
name = "Avro"
description = "Avro files on HDFS"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.AvroFileAccessor"
  resolver = "hdfs.AvroResolver"

[[profile]]
name = "SequenceWritable"
description = "Sequence files with custom writable values"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.SequenceFileAccessor"
  resolver = "hdfs.WritableResolver"

[[profile]]
name = "HBase"
description = "HBase tables"
  [profile.plugins]
  fragmenter = "hbase.HBaseDataFragmenter"
  accessor = "hbase.HBaseAccessor"
  resolver = "hbase.HBaseResolver"

[[profile]]
name = "S3Text"
description = "Delimited text files on S3"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.LineBreakAccessor"
  resolver = "hdfs.StringPassResolver"

[[profile]]
name = "S3Parquet"
description = "Parquet files on S3"
  [profile.plugins]
  fragmenter = "parquet.ParquetDataFragmenter"
  accessor = "parquet.ParquetFileAccessor"
  resolver = "parquet.ParquetResolver"

[[profile]]
name = "ADLText"
description = "Delimited text files on Azure Data Lake"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.LineBreakAccessor"
  resolver = "hdfs.StringPassResolver"

[[profile]]
name = "ADLParquet"
description = "Parquet files on Azure Data Lake"
  [profile.plugins]
  fragmenter = "parquet.ParquetDataFragmenter"
  accessor = "parquet.ParquetFileAccessor"
  resolver = "parquet.ParquetResolver"

[[profile]]
name = "GSText"
description = "Delimited text files on Google Cloud Storage"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.LineBreakAccessor"
  resolver = "hdfs.StringPassResolver"

[[profile]]
name = "WASBSText"
description = "Delimited text files on Azure Blob Storage"
  [profile.plugins]
  fragmenter = "hdfs.HdfsDataFragmenter"
  accessor = "hdfs.LineBreakAccessor"
  resolver = "hdfs.StringPassResolver"
`

var (
	builtinOnce     sync.Once
	builtinProfiles []*Profile
)

// Builtin returns the profiles compiled into the gateway.
func Builtin() []*Profile {
	builtinOnce.Do(func() {
		var err error
		if builtinProfiles, err = ReadToml(strings.NewReader(builtinCatalog)); err != nil {
			glog.Fatalf("bad builtin profile catalog: %v", err)
		}
	})
	return append([]*Profile(nil), builtinProfiles...)
}

// ReadToml reads a profile catalog in TOML format.
func ReadToml(r io.Reader) (profiles []*Profile, err error) {
	var cat catalogT
	if _, err = toml.NewDecoder(r).Decode(&cat); err != nil {
		return nil, errors.Wrap(err, "decode profile catalog")
	}
	return cat.profiles()
}

// LoadFile reads a profile catalog from a TOML file.
func LoadFile(path string) (profiles []*Profile, err error) {
	var cat catalogT
	if _, err = toml.DecodeFile(path, &cat); err != nil {
		return nil, errors.Wrapf(err, "load profile catalog %s", path)
	}
	return cat.profiles()
}

func (c *catalogT) profiles() ([]*Profile, error) {
	profiles := make([]*Profile, 0, len(c.Profile))
	for i, p := range c.Profile {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("profile #%d has no name", i)
		}
		for kind := range p.Plugins {
			if !isPluginKind(strings.ToLower(kind)) {
				return nil, fmt.Errorf("profile '%s': unknown plugin kind '%s'", p.Name, kind)
			}
		}
		profiles = append(profiles, NewProfile(p.Name, p.Description, p.Plugins, p.Options))
	}
	return profiles, nil
}

// Merge returns base with every profile of overrides replacing the base
// profile of the same name, ignoring case.
func Merge(base []*Profile, overrides []*Profile) []*Profile {
	index := make(map[string]int, len(base))
	merged := make([]*Profile, 0, len(base)+len(overrides))
	for _, p := range base {
		index[strings.ToUpper(p.name)] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range overrides {
		key := strings.ToUpper(p.name)
		if i, found := index[key]; found {
			glog.Infof("profile '%s' overrides builtin definition", p.name)
			merged[i] = p
		} else {
			index[key] = len(merged)
			merged = append(merged, p)
		}
	}
	return merged
}
