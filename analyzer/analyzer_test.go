package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/greenweb/ecoscan/collector"
	"github.com/greenweb/ecoscan/ecoindex"
	"github.com/greenweb/ecoscan/log"
	"github.com/greenweb/ecoscan/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCollected() *collector.Result {
	records := []collector.RequestRecord{
		{
			URL: "https://cdn.test/app.js", Domain: "cdn.test", Protocol: "h2",
			StatusCode: 200, ResourceType: collector.ResourceScript,
			TransferSize: 1500, ResourceSize: 4000, CacheLifetimeMs: 600_000,
		},
		{
			URL: "https://site.test/logo.png", Domain: "site.test", Protocol: "h3",
			StatusCode: 200, ResourceType: collector.ResourceImage,
			TransferSize: 2500, ResourceSize: 2500, CacheLifetimeMs: 0,
		},
	}
	return &collector.Result{
		Metrics:   ecoindex.PageMetrics{DOMElements: 150, Requests: 2, SizeKB: 4.0},
		Requests:  records,
		Breakdown: collector.BreakdownOf(records),
		TTFBMs:    120,
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	collected := sampleCollected()
	score := ecoindex.Compute(collected.Metrics)
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	result := assemble("https://site.test", now, collected, score)

	assert.Equal(t, "https://site.test", result.URL)
	assert.Equal(t, "2024-06-01T10:30:00Z", result.Timestamp)
	assert.Equal(t, score.Value, result.EcoIndex.Score)
	assert.Equal(t, score.Grade, result.EcoIndex.Grade)
	assert.Equal(t, 150, result.EcoIndex.DOMElements)
	assert.Equal(t, 2, result.EcoIndex.Requests)
	assert.Len(t, result.Requests, 2)
	assert.Equal(t, 120.0, result.TTFBMs)
	assert.False(t, result.HTMLReportPath.Valid)

	// Both records are short-cached, both are problematic, ascending TTL.
	require.Len(t, result.CacheAnalysis, 2)
	assert.Equal(t, "logo.png", result.CacheAnalysis[0].Filename)

	assert.Equal(t, 2, result.Analytics.DomainStats.TotalRequests)
	require.Len(t, result.Analytics.ProtocolStats.Protocols, 2)
	assert.Equal(t, "HTTP/3", result.Analytics.ProtocolStats.Protocols[0].Protocol)
	assert.Zero(t, result.Analytics.DuplicateStats.DuplicateCount)
}

func TestResultJSONShape(t *testing.T) {
	t.Parallel()

	collected := sampleCollected()
	result := assemble("https://site.test", time.Now(), collected, ecoindex.Compute(collected.Metrics))

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, key := range []string{"url", "timestamp", "ecoindex", "requests", "cacheAnalysis", "analytics", "ttfbMs", "htmlReportPath"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "null", string(doc["htmlReportPath"]))

	var eco map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["ecoindex"], &eco))
	for _, key := range []string{"score", "grade", "ghg", "water", "domElements", "requests", "sizeKb", "resourceBreakdown"} {
		assert.Contains(t, eco, key)
	}
}

type failingPersister struct{}

func (failingPersister) Persist(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

func TestAttachReportFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	collected := sampleCollected()
	result := assemble("https://site.test", time.Now(), collected, ecoindex.Compute(collected.Metrics))

	a := New(Options{GenerateReport: true, ReportDir: t.TempDir()}, log.NullLogger())
	a.persister = failingPersister{}

	// Must not panic or error; the result stays valid without the artifact.
	a.attachReport(context.Background(), result)
	assert.False(t, result.HTMLReportPath.Valid)
}

func TestAttachReportSetsPath(t *testing.T) {
	t.Parallel()

	collected := sampleCollected()
	result := assemble("https://site.test", time.Now(), collected, ecoindex.Compute(collected.Metrics))

	a := New(Options{GenerateReport: true, ReportDir: t.TempDir()}, log.NullLogger())
	a.attachReport(context.Background(), result)

	require.True(t, result.HTMLReportPath.Valid)
	_, err := os.Stat(result.HTMLReportPath.String)
	assert.NoError(t, err)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	collected := sampleCollected()
	result := assemble("https://site.test", time.Now(), collected, ecoindex.Compute(collected.Metrics))

	dir := t.TempDir()
	path, err := writeReport(context.Background(), &storage.LocalFilePersister{}, dir, result)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "https://site.test")
	assert.Contains(t, string(html), string(result.EcoIndex.Grade))
	assert.Contains(t, string(html), "cdn.test")
}
