package analytics

import (
	"sort"

	"github.com/greenweb/ecoscan/collector"
)

// DuplicateGroup describes one resource fetched more than once. Two requests
// belong to the same group when they share a filename and a decompressed
// resource size.
type DuplicateGroup struct {
	Filename     string   `json:"filename"`
	ResourceSize int64    `json:"resourceSize"`
	ResourceType string   `json:"resourceType"`
	URLs         []string `json:"urls"`
	Domains      []string `json:"domains"`
	WastedBytes  int64    `json:"wastedBytes"`
}

// DuplicateAnalytics is the duplicate-detection view over a request list.
type DuplicateAnalytics struct {
	Duplicates       []DuplicateGroup `json:"duplicates"`
	TotalWastedBytes int64            `json:"totalWastedBytes"`
	DuplicateCount   int              `json:"duplicateCount"`
}

type dupKey struct {
	filename string
	size     int64
}

// DuplicateStats finds resources fetched multiple times. Filenames that are
// empty or "index.html" are skipped. Groups are ordered by descending wasted
// bytes, ties broken by ascending filename.
func DuplicateStats(records []collector.RequestRecord) DuplicateAnalytics {
	out := DuplicateAnalytics{Duplicates: []DuplicateGroup{}}
	if len(records) == 0 {
		return out
	}

	type agg struct {
		urls         []string
		domains      map[string]struct{}
		resourceType string
	}
	groups := make(map[dupKey]*agg)
	for _, r := range records {
		filename := extractFilename(r.URL)
		if filename == "" || filename == "index.html" {
			continue
		}
		key := dupKey{filename: filename, size: r.ResourceSize}
		a, ok := groups[key]
		if !ok {
			a = &agg{domains: make(map[string]struct{}), resourceType: r.ResourceType}
			groups[key] = a
		}
		a.urls = append(a.urls, r.URL)
		if r.Domain != "" {
			a.domains[r.Domain] = struct{}{}
		}
	}

	for key, a := range groups {
		if len(a.urls) < 2 {
			continue
		}
		domains := make([]string, 0, len(a.domains))
		for d := range a.domains {
			domains = append(domains, d)
		}
		sort.Strings(domains)

		wasted := int64(len(a.urls)-1) * key.size
		out.Duplicates = append(out.Duplicates, DuplicateGroup{
			Filename:     key.filename,
			ResourceSize: key.size,
			ResourceType: a.resourceType,
			URLs:         a.urls,
			Domains:      domains,
			WastedBytes:  wasted,
		})
		out.TotalWastedBytes += wasted
	}

	sort.Slice(out.Duplicates, func(i, j int) bool {
		if out.Duplicates[i].WastedBytes != out.Duplicates[j].WastedBytes {
			return out.Duplicates[i].WastedBytes > out.Duplicates[j].WastedBytes
		}
		return out.Duplicates[i].Filename < out.Duplicates[j].Filename
	})
	out.DuplicateCount = len(out.Duplicates)
	return out
}
