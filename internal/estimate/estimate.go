// Package estimate maps the number of thumbnails in progress to a
// delivery-time tier.
package estimate

import (
	"fmt"
	"time"
)

// Severity classifies how loaded the queue is.
type Severity string

const (
	SeverityFast       Severity = "fast"
	SeverityStandard   Severity = "standard"
	SeverityBusy       Severity = "busy"
	SeverityHighDemand Severity = "high-demand"
)

// Estimate is the tier presented to visitors.
type Estimate struct {
	TimeLabel   string   `json:"time"`
	Severity    Severity `json:"severity"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
}

var tiers = []struct {
	upTo int
	est  Estimate
}{
	{5, Estimate{"24 hours", SeverityFast, "Fast Track", "Your thumbnail will be prioritized and delivered quickly!"}},
	{10, Estimate{"30 hours", SeverityStandard, "Standard", "Your thumbnail is in the standard delivery queue."}},
	{15, Estimate{"48 hours", SeverityBusy, "Busy Period", "We're experiencing higher demand, but your thumbnail is queued."}},
}

var highDemand = Estimate{"72 hours", SeverityHighDemand, "High Demand", "We're working through a busy period. Thank you for your patience!"}

// Tier returns the estimate for count thumbnails in progress. Negative
// counts are treated as zero.
func Tier(count int) Estimate {
	count = max(count, 0)
	for _, t := range tiers {
		if count <= t.upTo {
			return t.est
		}
	}
	return highDemand
}

// LastUpdated describes how long ago updatedAt was relative to now.
func LastUpdated(now, updatedAt time.Time) string {
	minutes := int(now.Sub(updatedAt) / time.Minute)
	if minutes < 1 {
		return "Just now"
	}
	if minutes < 60 {
		return ago(minutes, "minute")
	}

	hours := minutes / 60
	if hours < 24 {
		return ago(hours, "hour")
	}
	return ago(hours/24, "day")
}

func ago(n int, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
