package archive

import (
	"sort"
	"strings"

	"sae/internal/models"
)

// BuildIndex derives the grouped views from parsed entries. Entries are
// grouped by date then user in encounter order; within each user group
// they are sorted by sequence number ascending with the original order
// as a stable tie-break. byUser concatenates a user's per-date groups in
// the order the dates were encountered during the build pass — display
// ordering is the caller's job.
func BuildIndex(entries []*models.MediaEntry) *models.ArchiveIndex {
	byDateUser := make(map[string]map[string][]*models.MediaEntry)
	var dateOrder []string
	userOrderPerDate := make(map[string][]string)

	for _, e := range entries {
		users, ok := byDateUser[e.Date]
		if !ok {
			users = make(map[string][]*models.MediaEntry)
			byDateUser[e.Date] = users
			dateOrder = append(dateOrder, e.Date)
		}
		if _, ok := users[e.Username]; !ok {
			userOrderPerDate[e.Date] = append(userOrderPerDate[e.Date], e.Username)
		}
		users[e.Username] = append(users[e.Username], e)
	}

	byDate := make(map[string][]*models.MediaEntry, len(byDateUser))
	byUser := make(map[string][]*models.MediaEntry)
	var userOrder []string
	total := 0

	for _, date := range dateOrder {
		for _, user := range userOrderPerDate[date] {
			group := byDateUser[date][user]
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].SequenceNumber < group[j].SequenceNumber
			})
			byDate[date] = append(byDate[date], group...)
			if _, ok := byUser[user]; !ok {
				userOrder = append(userOrder, user)
			}
			byUser[user] = append(byUser[user], group...)
			total += len(group)
		}
	}

	return models.NewArchiveIndex(byDate, byUser, dateOrder, userOrder, total)
}

// SortDatesDescending orders YYYYMMDD dates newest first. ISO-style
// dates compare lexicographically.
func SortDatesDescending(dates []string) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i] > dates[j]
	})
}

// SortUsersForDisplay pins the primary account first, then orders by
// descending story count, then case-insensitively by name.
func SortUsersForDisplay(users []string, primary string, storyCount func(string) int) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a == primary {
			return true
		}
		if b == primary {
			return false
		}
		ca, cb := storyCount(a), storyCount(b)
		if ca != cb {
			return ca > cb
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
}

// GroupByUser splits a date's entries into per-user groups preserving
// the index order within each group.
func GroupByUser(entries []*models.MediaEntry) (map[string][]*models.MediaEntry, []string) {
	grouped := make(map[string][]*models.MediaEntry)
	var order []string
	for _, e := range entries {
		if _, ok := grouped[e.Username]; !ok {
			order = append(order, e.Username)
		}
		grouped[e.Username] = append(grouped[e.Username], e)
	}
	return grouped, order
}

// GroupByDate splits a user's entries into per-date groups preserving
// the index order within each group.
func GroupByDate(entries []*models.MediaEntry) (map[string][]*models.MediaEntry, []string) {
	grouped := make(map[string][]*models.MediaEntry)
	var order []string
	for _, e := range entries {
		if _, ok := grouped[e.Date]; !ok {
			order = append(order, e.Date)
		}
		grouped[e.Date] = append(grouped[e.Date], e)
	}
	return grouped, order
}
