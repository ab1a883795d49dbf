package collector

// RequestRecord is one captured network request. Records are immutable once
// the run completes; the list of them is the sole input to the analytics
// transforms.
type RequestRecord struct {
	URL             string  `json:"url"`
	Domain          string  `json:"domain"`
	Protocol        string  `json:"protocol"` // raw, e.g. "h2"; normalized by analytics
	StatusCode      int64   `json:"statusCode"`
	MimeType        string  `json:"mimeType"`
	ResourceType    string  `json:"resourceType"`
	TransferSize    int64   `json:"transferSize"` // compressed bytes on the wire
	ResourceSize    int64   `json:"resourceSize"` // decompressed bytes
	Priority        string  `json:"priority"`
	StartTime       float64 `json:"startTime"` // ms since first request
	EndTime         float64 `json:"endTime"`
	Duration        float64 `json:"duration"`
	FromCache       bool    `json:"fromCache"`
	CacheLifetimeMs int64   `json:"cacheLifetimeMs"`
}

// SizeBytes returns the bytes this request contributes to the page weight:
// the transfer size, falling back to the decompressed resource size when the
// reported transfer size is zero. Never silently zero for a sized resource.
func (r RequestRecord) SizeBytes() int64 {
	if r.TransferSize > 0 {
		return r.TransferSize
	}
	return r.ResourceSize
}

// ResourceTypeCount aggregates requests of one resource classification.
type ResourceTypeCount struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// ResourceBreakdown maps a resource classification (script, stylesheet,
// image, font, xhr, other) to its count and byte total.
type ResourceBreakdown map[string]ResourceTypeCount

// BreakdownOf computes the per-type breakdown for a set of records.
func BreakdownOf(records []RequestRecord) ResourceBreakdown {
	b := make(ResourceBreakdown)
	for _, r := range records {
		tc := b[r.ResourceType]
		tc.Count++
		tc.Bytes += r.SizeBytes()
		b[r.ResourceType] = tc
	}
	return b
}
