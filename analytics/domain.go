package analytics

import (
	"sort"

	"github.com/greenweb/ecoscan/collector"
)

// domainPalette is cycled by rank when assigning chart colors. A versioned
// constant: changing it changes rendered output for historical results.
var domainPalette = [8]string{
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // amber
	"#ef4444", // red
	"#8b5cf6", // purple
	"#ec4899", // pink
	"#06b6d4", // cyan
	"#84cc16", // lime
}

const unknownDomain = "(unknown)"

// DomainStat describes the requests served by a single hostname.
type DomainStat struct {
	Domain            string  `json:"domain"`
	RequestCount      int     `json:"requestCount"`
	TotalTransferSize int64   `json:"totalTransferSize"`
	Percentage        float64 `json:"percentage"`
	Color             string  `json:"color"`
}

// DomainAnalytics is the per-domain view over a request list.
type DomainAnalytics struct {
	Domains       []DomainStat `json:"domains"`
	TotalRequests int          `json:"totalRequests"`
	TotalSize     int64        `json:"totalSize"`
}

// DomainStats groups requests by hostname. Domains are ordered by descending
// request count, ties broken by ascending name, and colored by rank from the
// fixed palette.
func DomainStats(records []collector.RequestRecord) DomainAnalytics {
	out := DomainAnalytics{Domains: []DomainStat{}}
	if len(records) == 0 {
		return out
	}

	type agg struct {
		count int
		size  int64
	}
	byDomain := make(map[string]*agg)
	for _, r := range records {
		name := r.Domain
		if name == "" {
			name = unknownDomain
		}
		a, ok := byDomain[name]
		if !ok {
			a = &agg{}
			byDomain[name] = a
		}
		a.count++
		a.size += r.TransferSize
		out.TotalSize += r.TransferSize
	}
	out.TotalRequests = len(records)

	for name, a := range byDomain {
		out.Domains = append(out.Domains, DomainStat{
			Domain:            name,
			RequestCount:      a.count,
			TotalTransferSize: a.size,
			Percentage:        percentage(a.count, out.TotalRequests),
		})
	}
	sort.Slice(out.Domains, func(i, j int) bool {
		if out.Domains[i].RequestCount != out.Domains[j].RequestCount {
			return out.Domains[i].RequestCount > out.Domains[j].RequestCount
		}
		return out.Domains[i].Domain < out.Domains[j].Domain
	})
	for i := range out.Domains {
		out.Domains[i].Color = domainPalette[i%len(domainPalette)]
	}
	return out
}
