package stats

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"os"
	"sort"
	"time"
)

type (
	IHtmlStatsSection interface {
		Title() template.HTML
		Body() template.HTML
	}

	HtmlStats struct {
		Title    string
		Version  string
		Host     string
		Sections []IHtmlStatsSection
	}

	ServerInfo struct {
		StartTime   time.Time
		NumProfiles int
		Fingerprint uint32
	}

	latencySection struct {
		stat StatsData
	}
	errorSection struct {
		errors map[string]uint64
	}
	profileSection struct {
		profiles []ProfileStats
	}

	IndexPage struct {
		Title string
		Links []Hyperlink
	}
	Hyperlink struct {
		Text string
		HRef string
	}
)

func (s *ServerInfo) Title() template.HTML {
	return template.HTML("Server Info")
}

func (s *ServerInfo) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(
		`<div id="id-server-info"><table title="server-info">
<tr><th>Start Time</th><th>Process ID</th><th>Number of Profiles</th><th>Profile Fingerprint</th></tr>`)

	fmt.Fprintf(&buf, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%08x</td></tr></table></div>",
		s.StartTime.Format("2006-01-02 15:04:05"), os.Getpid(), s.NumProfiles, s.Fingerprint)

	return template.HTML(buf.String())
}

func (s *latencySection) Title() template.HTML {
	return template.HTML("Decode Latency")
}

func (s *latencySection) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<table title="latency">
<tr><th>Requests</th><th>Errors</th><th>Average</th><th>Min</th><th>Max</th><th>50%</th><th>95%</th><th>99%</th><th>99.99%</th></tr>`)
	st := &s.stat
	fmt.Fprintf(&buf, "<tr><td>%d</td><td>%d</td>", st.NumRequests, st.NumErrors)
	for _, d := range []time.Duration{st.AvgLatency.Duration, st.MinLatency.Duration, st.MaxLatency.Duration,
		st.P50Latency.Duration, st.P95Latency.Duration, st.P99Latency.Duration, st.P9999Latency.Duration} {
		fmt.Fprintf(&buf, "<td>%s</td>", HtmlDurationEscapeString(d.Round(time.Microsecond)))
	}
	buf.WriteString("</tr></table>")
	return template.HTML(buf.String())
}

func (s *errorSection) Title() template.HTML {
	return template.HTML("Decode Errors")
}

func (s *errorSection) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<table title="errors"><tr><th>Kind</th><th>Count</th></tr>`)
	kinds := make([]string, 0, len(s.errors))
	for k := range s.errors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&buf, "<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(k), s.errors[k])
	}
	buf.WriteString("</table>")
	return template.HTML(buf.String())
}

func (s *profileSection) Title() template.HTML {
	return template.HTML("Requests by Profile")
}

func (s *profileSection) Body() template.HTML {
	var buf bytes.Buffer
	buf.WriteString(`<table title="profiles">
<tr><th>Profile</th><th>Decoded</th><th>Average Columns</th><th>Max Columns</th></tr>`)
	for _, p := range s.profiles {
		fmt.Fprintf(&buf, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>",
			html.EscapeString(p.Name), p.NumDecoded, p.AvgColumns, p.MaxColumns)
	}
	buf.WriteString("</table>")
	return template.HTML(buf.String())
}

func (s *HtmlStats) AddSection(sec IHtmlStatsSection) {
	s.Sections = append(s.Sections, sec)
}

// AddSummary appends the sections rendering sum.
func (s *HtmlStats) AddSummary(sum Summary) {
	s.AddSection(&latencySection{stat: sum.Latency})
	s.AddSection(&errorSection{errors: sum.Errors})
	s.AddSection(&profileSection{profiles: sum.Profiles})
}

func (s *HtmlStats) Write(w io.Writer) error {
	return HtmlStatsTmpl.Execute(w, s)
}

func (p *IndexPage) AddLink(href string, text string) {
	if len(text) == 0 {
		text = href
	}
	p.Links = append(p.Links, Hyperlink{Text: text, HRef: href})
}

func (p *IndexPage) Write(w io.Writer) error {
	return IndexPageTmpl.Execute(w, p)
}
