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

package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"github.com/frankgh/pxf/cmd/pxf/config"
	"github.com/frankgh/pxf/pkg/errors"
	"github.com/frankgh/pxf/pkg/logging"
	"github.com/frankgh/pxf/pkg/logging/otel"
	"github.com/frankgh/pxf/pkg/params"
	"github.com/frankgh/pxf/pkg/plugins"
	"github.com/frankgh/pxf/pkg/profile"
	"github.com/frankgh/pxf/pkg/request"
	"github.com/frankgh/pxf/pkg/stats"
	"github.com/frankgh/pxf/pkg/util"
	"github.com/frankgh/pxf/pkg/version"
)

const (
	HeaderRequestId = "X-PXF-Request-Id"

	PathDescriptor = "/pxf/v1/descriptor"
	PathProfiles   = "/pxf/v1/profiles"
	PathStats      = "/stats"
	PathStatsJson  = "/stats/json"
	PathVersion    = "/version"
	PathConfig     = "/debug/config"
)

type (
	// Handler serves the gateway endpoints. It is safe for concurrent use.
	Handler struct {
		catalog   *profile.Registry
		plugins   *plugins.Registry
		stats     *stats.DecodeStats
		mux       http.ServeMux
		indexPage stats.IndexPage
		hostName  string
	}

	errorResponse struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}

	accessorStatus struct {
		Name           string `json:"name"`
		ThreadSafe     bool   `json:"threadSafe"`
		WorkingSegment bool   `json:"workingSegment"`
		Error          string `json:"error,omitempty"`
	}

	descriptorResponse struct {
		RequestId  string              `json:"requestId"`
		Descriptor *request.Descriptor `json:"descriptor"`
		Accessor   *accessorStatus     `json:"accessorStatus,omitempty"`
	}

	profilesResponse struct {
		Fingerprint uint32   `json:"fingerprint"`
		Profiles    []string `json:"profiles"`
	}
)

func NewHandler(catalog *profile.Registry, pluginRegistry *plugins.Registry, st *stats.DecodeStats) *Handler {
	h := &Handler{
		catalog: catalog,
		plugins: pluginRegistry,
		stats:   st,
	}
	h.hostName, _ = os.Hostname()
	h.indexPage.Title = "PXF Gateway"

	h.mux.HandleFunc("/", h.indexHandler)
	h.mux.HandleFunc(PathDescriptor, h.descriptorHandler)
	h.addPage(PathProfiles, h.profilesHandler)
	h.addPage(PathStats, h.statsHandler)
	h.addPage(PathStatsJson, h.jsonStatsHandler)
	h.addPage(PathVersion, version.HttpHandler)
	h.addPage(PathConfig, debugConfigHandler)
	return h
}

func (h *Handler) addPage(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	h.mux.HandleFunc(path, handler)
	h.indexPage.AddLink(path, path)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := h.indexPage.Write(w); err != nil {
		glog.Warningf("write index page: %s", err)
	}
}

func (h *Handler) descriptorHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	rid := util.NewRequestId()
	w.Header().Set(HeaderRequestId, rid)

	ns := params.FromHeader(r.Header)
	tmStart := time.Now()
	desc, err := request.Decode(ns, h.catalog)
	rht := time.Since(tmStart)

	var profileName string
	if err == nil {
		profileName = desc.Profile()
	} else {
		profileName = h.knownProfile(ns)
	}
	h.record(rid, profileName, desc, rht, err)

	if err != nil {
		writeJson(w, http.StatusBadRequest, errorResponse{
			Kind:    errors.KindOf(err).String(),
			Message: err.Error(),
		})
		return
	}
	writeJson(w, http.StatusOK, descriptorResponse{
		RequestId:  rid,
		Descriptor: desc,
		Accessor:   h.accessorStatus(desc),
	})
}

// knownProfile returns the catalog name of the profile ns names, or
// stats.NoProfile when it names none the catalog holds, so that clients
// cannot add metric series.
func (h *Handler) knownProfile(ns *params.Namespace) string {
	if name, ok := ns.Get(request.KeyProfile); ok {
		if p, found := h.catalog.Lookup(name); found {
			return p.Name()
		}
	}
	return stats.NoProfile
}

// accessorStatus instantiates the accessor named by desc, when one is
// registered, to report how it would run on this segment.
func (h *Handler) accessorStatus(desc *request.Descriptor) *accessorStatus {
	if _, found := h.plugins.Lookup(desc.Accessor()); !found {
		return nil
	}
	st := &accessorStatus{Name: desc.Accessor()}
	acc, err := h.plugins.New(desc.Accessor(), desc)
	if err != nil {
		glog.V(2).Infof("accessor %s: %s", desc.Accessor(), err)
		st.Error = err.Error()
		return st
	}
	st.ThreadSafe = acc.IsThreadSafe()
	st.WorkingSegment = plugins.IsWorkingSegment(acc)
	return st
}

func (h *Handler) record(rid string, profileName string, desc *request.Descriptor, rht time.Duration, err error) {
	var kind string
	numColumns := 0
	if err != nil {
		kind = errors.KindOf(err).String()
	} else {
		numColumns = desc.NumColumns()
	}
	h.stats.Put(profileName, numColumns, rht, err)
	otel.RecordDecode(profileName, kind, rht)

	b := logging.NewKVBufferForLog()
	b.AddReqIdString(rid).AddProfile(profileName)
	if err == nil {
		b.AddSegment(desc.SegmentId(), desc.TotalSegments()).
			AddUser(desc.User()).
			AddDataSource(desc.DataSource()).
			AddAccessor(desc.Accessor()).
			AddNumColumns(numColumns).
			AddStatus("ok")
	} else {
		b.AddStatus("error").AddErrKind(kind)
	}
	b.AddRequestHandleTime(rht)
	if err != nil {
		if logging.LOG_WARN {
			glog.Warningf("%s %s", b.String(), err)
		}
	} else if logging.LOG_INFO {
		glog.Info(b.String())
	}
}

func (h *Handler) profilesHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, profilesResponse{
		Fingerprint: h.catalog.Fingerprint(),
		Profiles:    h.catalog.Names(),
	})
}

func (h *Handler) statsHandler(w http.ResponseWriter, r *http.Request) {
	page := stats.HtmlStats{
		Title:   "PXF Gateway Statistics",
		Version: version.OnelineVersionString(),
		Host:    h.hostName,
	}
	sum := h.stats.GetSummary()
	page.AddSection(&stats.ServerInfo{
		StartTime:   sum.Since,
		NumProfiles: h.catalog.Len(),
		Fingerprint: h.catalog.Fingerprint(),
	})
	page.AddSummary(sum)
	if err := page.Write(w); err != nil {
		glog.Warningf("write stats page: %s", err)
	}
}

func (h *Handler) jsonStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, h.stats.GetSummary())
}

func debugConfigHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	encoder := toml.NewEncoder(w)
	encoder.Encode(&config.Conf)
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("write response: %s", err)
	}
}
