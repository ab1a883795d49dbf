package analyzer

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/greenweb/ecoscan/storage"

	"github.com/oxtoacart/bpool"
	"github.com/pkg/errors"
)

// reportBuffers recycles render buffers across report generations.
var reportBuffers = bpool.NewBufferPool(4)

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

// writeReport renders the HTML report and persists it. The returned path is
// where the artifact was written.
func writeReport(ctx context.Context, persister storage.FilePersister, dir string, result *AnalysisResult) (string, error) {
	buf := reportBuffers.Get()
	defer reportBuffers.Put(buf)

	if err := reportTemplate.Execute(buf, result); err != nil {
		return "", errors.Wrap(err, "rendering report")
	}

	name := fmt.Sprintf("ecoscan-report-%s.html", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := persister.Persist(ctx, path, buf); err != nil {
		return "", errors.Wrap(err, "persisting report")
	}
	return path, nil
}

const reportHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>EcoScan report - {{.URL}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2937; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .6rem; border-bottom: 1px solid #e5e7eb; font-size: .9rem; }
.grade { display: inline-block; padding: .2rem .8rem; border-radius: .4rem; color: #fff; font-weight: 700; background: {{.EcoIndex.Grade.Color}}; }
.muted { color: #6b7280; }
.swatch { display: inline-block; width: .7rem; height: .7rem; border-radius: 50%; margin-right: .4rem; }
</style>
</head>
<body>
<h1>EcoScan report</h1>
<p><a href="{{.URL}}">{{.URL}}</a> <span class="muted">measured {{.Timestamp}}</span></p>

<h2>EcoIndex</h2>
<p>
<span class="grade">{{.EcoIndex.Grade}}</span>
score {{printf "%.1f" .EcoIndex.Score}} ({{.EcoIndex.Grade.Label}}),
{{printf "%.2f" .EcoIndex.GHG}} gCO2e,
{{printf "%.2f" .EcoIndex.Water}} cl water
</p>
<table>
<tr><th>DOM elements</th><th>Requests</th><th>Transfer size</th><th>TTFB</th></tr>
<tr>
<td>{{.EcoIndex.DOMElements}}</td>
<td>{{.EcoIndex.Requests}}</td>
<td>{{printf "%.1f" .EcoIndex.SizeKB}} kB</td>
<td>{{printf "%.0f" .TTFBMs}} ms</td>
</tr>
</table>

<h2>Domains</h2>
<table>
<tr><th>Domain</th><th>Requests</th><th>Transfer</th><th>Share</th></tr>
{{range .Analytics.DomainStats.Domains}}
<tr>
<td><span class="swatch" style="background:{{.Color}}"></span>{{.Domain}}</td>
<td>{{.RequestCount}}</td>
<td>{{.TotalTransferSize}} B</td>
<td>{{printf "%.1f" .Percentage}}%</td>
</tr>
{{end}}
</table>

<h2>Protocols</h2>
<table>
<tr><th>Protocol</th><th>Requests</th><th>Share</th></tr>
{{range .Analytics.ProtocolStats.Protocols}}
<tr>
<td><span class="swatch" style="background:{{.Color}}"></span>{{.Protocol}}</td>
<td>{{.Count}}</td>
<td>{{printf "%.1f" .Percentage}}%</td>
</tr>
{{end}}
</table>

<h2>Cache</h2>
<table>
<tr><th>Lifetime</th><th>Resources</th><th>Share</th></tr>
{{range .Analytics.CacheStats.Groups}}
<tr>
<td><span class="swatch" style="background:{{.Color}}"></span>{{.Label}}</td>
<td>{{.Count}}</td>
<td>{{printf "%.1f" .Percentage}}%</td>
</tr>
{{end}}
</table>
{{if .CacheAnalysis}}
<h2>Short-lived resources</h2>
<table>
<tr><th>Resource</th><th>Domain</th><th>TTL</th></tr>
{{range .CacheAnalysis}}
<tr><td>{{.Filename}}</td><td>{{.Domain}}</td><td>{{.CacheTTLLabel}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Analytics.DuplicateStats.Duplicates}}
<h2>Duplicate resources</h2>
<table>
<tr><th>Resource</th><th>Fetched</th><th>Wasted</th><th>Domains</th></tr>
{{range .Analytics.DuplicateStats.Duplicates}}
<tr>
<td>{{.Filename}}</td>
<td>{{len .URLs}}x</td>
<td>{{.WastedBytes}} B</td>
<td>{{range $i, $d := .Domains}}{{if $i}}, {{end}}{{$d}}{{end}}</td>
</tr>
{{end}}
</table>
{{end}}
</body>
</html>
`
