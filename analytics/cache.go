package analytics

import (
	"fmt"
	"sort"

	"github.com/greenweb/ecoscan/collector"
)

// CacheGroup counts the resources falling into one cache-lifetime bucket.
type CacheGroup struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ProblematicResource is a resource cached for less than a week, annotated
// for display.
type ProblematicResource struct {
	URL             string `json:"url"`
	Domain          string `json:"domain"`
	Filename        string `json:"filename"`
	CacheLifetimeMs int64  `json:"cacheLifetimeMs"`
	CacheTTLLabel   string `json:"cacheTtlLabel"`
	BadgeClass      string `json:"badgeClass"`
	BadgeText       string `json:"badgeText"`
	ResourceSize    int64  `json:"resourceSize"`
}

// CacheAnalytics is the cache-lifetime view over a request list.
type CacheAnalytics struct {
	Groups               []CacheGroup          `json:"groups"`
	ProblematicResources []ProblematicResource `json:"problematicResources"`
	TotalResources       int                   `json:"totalResources"`
	ProblematicCount     int                   `json:"problematicCount"`
}

type cacheBucket struct {
	label string
	color string
	// upTo is the exclusive upper bound in ms; -1 means unbounded.
	upTo int64
}

var cacheBuckets = [5]cacheBucket{
	{"none", "#ef4444", 1},
	{"< 1 hour", "#f59e0b", msHour},
	{"< 1 day", "#eab308", msDay},
	{"< 7 days", "#84cc16", msWeek},
	{">= 7 days", "#10b981", -1},
}

func bucketIndex(ms int64) int {
	for i, b := range cacheBuckets {
		if b.upTo < 0 || ms < b.upTo {
			return i
		}
	}
	return len(cacheBuckets) - 1
}

// CacheStats buckets requests by cache lifetime and lists the problematic
// ones (lifetime under a week), sorted by ascending lifetime.
func CacheStats(records []collector.RequestRecord) CacheAnalytics {
	out := CacheAnalytics{
		Groups:               []CacheGroup{},
		ProblematicResources: []ProblematicResource{},
		TotalResources:       len(records),
	}
	if len(records) == 0 {
		return out
	}

	var counts [len(cacheBuckets)]int
	for _, r := range records {
		counts[bucketIndex(r.CacheLifetimeMs)]++
	}
	for i, b := range cacheBuckets {
		if counts[i] == 0 {
			continue
		}
		out.Groups = append(out.Groups, CacheGroup{
			Label:      b.label,
			Count:      counts[i],
			Percentage: percentage(counts[i], out.TotalResources),
			Color:      b.color,
		})
	}

	for _, r := range records {
		if r.CacheLifetimeMs >= msWeek {
			continue
		}
		filename := extractFilename(r.URL)
		if filename == "" {
			filename = r.URL
		}
		out.ProblematicResources = append(out.ProblematicResources, ProblematicResource{
			URL:             r.URL,
			Domain:          r.Domain,
			Filename:        filename,
			CacheLifetimeMs: r.CacheLifetimeMs,
			CacheTTLLabel:   formatTTL(r.CacheLifetimeMs),
			BadgeClass:      badgeClass(r.CacheLifetimeMs),
			BadgeText:       badgeText(r.CacheLifetimeMs),
			ResourceSize:    r.ResourceSize,
		})
	}
	sort.SliceStable(out.ProblematicResources, func(i, j int) bool {
		return out.ProblematicResources[i].CacheLifetimeMs < out.ProblematicResources[j].CacheLifetimeMs
	})
	out.ProblematicCount = len(out.ProblematicResources)
	return out
}

// formatTTL renders a lifetime as a rounded-down human label.
func formatTTL(ms int64) string {
	if ms == 0 {
		return "none"
	}
	seconds := ms / 1000
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dmin", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

func badgeClass(ms int64) string {
	switch {
	case ms == 0:
		return "bg-red-100 text-red-700"
	case ms < msDay:
		return "bg-amber-100 text-amber-700"
	default:
		return "bg-yellow-100 text-yellow-700"
	}
}

func badgeText(ms int64) string {
	switch {
	case ms == 0:
		return "!"
	case ms < msHour:
		return "<1h"
	case ms < msDay:
		return "<1d"
	default:
		return "<7d"
	}
}
