package analytics

import (
	"strings"

	"github.com/greenweb/ecoscan/collector"
)

// Canonical protocol labels, in the fixed display order.
const (
	ProtocolHTTP3 = "HTTP/3"
	ProtocolHTTP2 = "HTTP/2"
	ProtocolHTTP1 = "HTTP/1.1"
	ProtocolOther = "Other"
)

var protocolOrder = [4]string{ProtocolHTTP3, ProtocolHTTP2, ProtocolHTTP1, ProtocolOther}

var protocolColors = map[string]string{
	ProtocolHTTP3: "#10b981", // green
	ProtocolHTTP2: "#3b82f6", // blue
	ProtocolHTTP1: "#f59e0b", // amber
	ProtocolOther: "#6b7280", // gray
}

// ProtocolStat describes the requests carried over one protocol family.
type ProtocolStat struct {
	Protocol   string  `json:"protocol"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ProtocolAnalytics is the protocol-distribution view over a request list.
type ProtocolAnalytics struct {
	Protocols     []ProtocolStat `json:"protocols"`
	TotalRequests int            `json:"totalRequests"`
}

// NormalizeProtocol maps a raw negotiated-protocol string to one of the four
// canonical labels.
func NormalizeProtocol(protocol string) string {
	p := strings.ToLower(protocol)
	switch {
	case strings.HasPrefix(p, "h3"), strings.Contains(p, "quic"):
		return ProtocolHTTP3
	case strings.HasPrefix(p, "h2"), p == "http/2", p == "http/2.0":
		return ProtocolHTTP2
	case strings.HasPrefix(p, "http/1"):
		return ProtocolHTTP1
	default:
		return ProtocolOther
	}
}

// ProtocolStats buckets requests by normalized protocol. Present buckets are
// always reported in the fixed display order regardless of their counts.
func ProtocolStats(records []collector.RequestRecord) ProtocolAnalytics {
	out := ProtocolAnalytics{Protocols: []ProtocolStat{}, TotalRequests: len(records)}
	if len(records) == 0 {
		return out
	}

	counts := make(map[string]int, len(protocolOrder))
	for _, r := range records {
		counts[NormalizeProtocol(r.Protocol)]++
	}

	for _, proto := range protocolOrder {
		n, ok := counts[proto]
		if !ok {
			continue
		}
		out.Protocols = append(out.Protocols, ProtocolStat{
			Protocol:   proto,
			Count:      n,
			Percentage: percentage(n, out.TotalRequests),
			Color:      protocolColors[proto],
		})
	}
	return out
}
