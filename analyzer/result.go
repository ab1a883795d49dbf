package analyzer

import (
	"time"

	"github.com/greenweb/ecoscan/analytics"
	"github.com/greenweb/ecoscan/collector"
	"github.com/greenweb/ecoscan/ecoindex"

	"gopkg.in/guregu/null.v3"
)

// EcoIndexResult is the scored summary of one measurement.
type EcoIndexResult struct {
	Score             float64                     `json:"score"`
	Grade             ecoindex.Grade              `json:"grade"`
	GHG               float64                     `json:"ghg"`
	Water             float64                     `json:"water"`
	DOMElements       int                         `json:"domElements"`
	Requests          int                         `json:"requests"`
	SizeKB            float64                     `json:"sizeKb"`
	ResourceBreakdown collector.ResourceBreakdown `json:"resourceBreakdown"`
}

// Analytics bundles the four derived views.
type Analytics struct {
	DomainStats    analytics.DomainAnalytics    `json:"domainStats"`
	ProtocolStats  analytics.ProtocolAnalytics  `json:"protocolStats"`
	CacheStats     analytics.CacheAnalytics     `json:"cacheStats"`
	DuplicateStats analytics.DuplicateAnalytics `json:"duplicateStats"`
}

// AnalysisResult is the complete, immutable outcome of one run. Ownership
// passes to the caller; nothing mutates it afterwards.
type AnalysisResult struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`

	EcoIndex EcoIndexResult            `json:"ecoindex"`
	Requests []collector.RequestRecord `json:"requests"`
	// CacheAnalysis lists the resources cached for less than a week.
	CacheAnalysis []analytics.ProblematicResource `json:"cacheAnalysis"`
	Analytics     Analytics                       `json:"analytics"`

	// TTFBMs is time-to-first-byte from the navigation-timing entry.
	TTFBMs float64 `json:"ttfbMs"`

	// HTMLReportPath is set when a report artifact was generated.
	HTMLReportPath null.String `json:"htmlReportPath"`
}

// assemble composes the raw collection output and the score into one result.
func assemble(url string, now time.Time, collected *collector.Result, score ecoindex.Score) *AnalysisResult {
	cacheStats := analytics.CacheStats(collected.Requests)

	return &AnalysisResult{
		URL:       url,
		Timestamp: now.UTC().Format(time.RFC3339),
		EcoIndex: EcoIndexResult{
			Score:             score.Value,
			Grade:             score.Grade,
			GHG:               score.GHG,
			Water:             score.Water,
			DOMElements:       collected.Metrics.DOMElements,
			Requests:          collected.Metrics.Requests,
			SizeKB:            collected.Metrics.SizeKB,
			ResourceBreakdown: collected.Breakdown,
		},
		Requests:      collected.Requests,
		CacheAnalysis: cacheStats.ProblematicResources,
		Analytics: Analytics{
			DomainStats:    analytics.DomainStats(collected.Requests),
			ProtocolStats:  analytics.ProtocolStats(collected.Requests),
			CacheStats:     cacheStats,
			DuplicateStats: analytics.DuplicateStats(collected.Requests),
		},
		TTFBMs: collected.TTFBMs,
	}
}
