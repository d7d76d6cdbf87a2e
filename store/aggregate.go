// api/store/aggregate.go
package store

import (
	"math"
	"sort"

	"oamour/api/models"
)

// MaxDashboardPages caps the per-page dwell table at the 20 pages with the
// most total dwell time.
const MaxDashboardPages = 20

// BuildDetails computes the dashboard summary and per-page dwell table from
// the raw rows. Dwell stats only count page_leave rows that carry both a
// page key and a duration.
func BuildDetails(rows []models.DetailRow) models.DetailsResponse {
	sessions := make(map[string]struct{})
	var devices models.DeviceCount

	type pageAgg struct {
		totalMs int64
		count   int
	}
	pageDuration := make(map[string]*pageAgg)

	for _, row := range rows {
		sessions[row.SessionID] = struct{}{}

		device := ""
		if row.DeviceType != nil {
			device = *row.DeviceType
		}
		switch device {
		case "mobile":
			devices.Mobile++
		case "tablet":
			devices.Tablet++
		case "desktop":
			devices.Desktop++
		default:
			devices.Unknown++
		}

		if row.EventType == models.EventPageLeave && row.PageKey != nil && row.DurationMs != nil {
			agg := pageDuration[*row.PageKey]
			if agg == nil {
				agg = &pageAgg{}
				pageDuration[*row.PageKey] = agg
			}
			agg.totalMs += *row.DurationMs
			agg.count++
		}
	}

	pages := make([]models.PageStat, 0, len(pageDuration))
	for key, agg := range pageDuration {
		avg := int64(0)
		if agg.count > 0 {
			avg = int64(math.Round(float64(agg.totalMs) / float64(agg.count)))
		}
		pages = append(pages, models.PageStat{
			PageKey: key,
			TotalMs: agg.totalMs,
			AvgMs:   avg,
			Exits:   agg.count,
		})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].TotalMs != pages[j].TotalMs {
			return pages[i].TotalMs > pages[j].TotalMs
		}
		return pages[i].PageKey < pages[j].PageKey
	})
	if len(pages) > MaxDashboardPages {
		pages = pages[:MaxDashboardPages]
	}

	if rows == nil {
		rows = []models.DetailRow{}
	}

	return models.DetailsResponse{
		Summary: models.DetailsSummary{
			TotalEvents:    len(rows),
			UniqueSessions: len(sessions),
			DeviceCount:    devices,
		},
		Pages: pages,
		Rows:  rows,
	}
}
