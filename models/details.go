// api/models/details.go
package models

// DeviceCount buckets events by the device type the client reported.
// Anything unrecognized or missing rolls into Unknown.
type DeviceCount struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
	Unknown int `json:"unknown"`
}

// PageStat summarizes dwell time for one logical screen, computed from
// page_leave rows that carry both a page key and a duration.
type PageStat struct {
	PageKey string `json:"pageKey"`
	TotalMs int64  `json:"totalMs"`
	AvgMs   int64  `json:"avgMs"`
	Exits   int    `json:"exits"`
}

// DetailsSummary is the headline block of the dashboard response.
type DetailsSummary struct {
	TotalEvents    int         `json:"totalEvents"`
	UniqueSessions int         `json:"uniqueSessions"`
	DeviceCount    DeviceCount `json:"deviceCount"`
}

// DetailsResponse is the body of GET /api/details/data.
type DetailsResponse struct {
	Summary DetailsSummary `json:"summary"`
	Pages   []PageStat     `json:"pages"`
	Rows    []DetailRow    `json:"rows"`
}
