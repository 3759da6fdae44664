package models

// UserStats is the per-user roll-up shown in listings. The averages are
// preformatted with one decimal, matching what clients render verbatim.
type UserStats struct {
	TotalStories int    `json:"totalStories"`
	TimespanDays int    `json:"timespanDays"`
	AvgPerDay    string `json:"avgPerDay"`
	AvgPerWeek   string `json:"avgPerWeek"`
}
