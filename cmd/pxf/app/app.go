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
PXF request gateway
*/
package app

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/frankgh/pxf/pkg/initmgr"
	"github.com/frankgh/pxf/pkg/version"
)

func Main() {
	defer initmgr.Finalize()

	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the pxf command tree. The glog flags are accepted by
// every command.
func NewRootCommand() *cobra.Command {
	progName := filepath.Base(os.Args[0])
	root := &cobra.Command{
		Use:          progName,
		Short:        progName + " decodes and serves PXF request configurations.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog complains about logging before flag.Parse otherwise
			flag.CommandLine.Parse(nil)
		},
	}
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	root.PersistentFlags().AddFlagSet(pflag.CommandLine)

	root.AddCommand(
		newServeCommand(),
		newDecodeCommand(),
		newProfilesCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "display version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.WriteVersionInfo(cmd.OutOrStdout())
		},
	}
}
