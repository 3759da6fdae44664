package models

// ArchiveIndex holds the grouped views over one load of the archive.
// It is built once by archive.BuildIndex and never mutated afterwards;
// accessors hand out copies of the order slices so callers can sort
// freely for display.
type ArchiveIndex struct {
	byDate    map[string][]*MediaEntry
	byUser    map[string][]*MediaEntry
	dateOrder []string
	userOrder []string
	total     int
}

func NewArchiveIndex(byDate, byUser map[string][]*MediaEntry, dateOrder, userOrder []string, total int) *ArchiveIndex {
	return &ArchiveIndex{
		byDate:    byDate,
		byUser:    byUser,
		dateOrder: dateOrder,
		userOrder: userOrder,
		total:     total,
	}
}

func EmptyArchiveIndex() *ArchiveIndex {
	return &ArchiveIndex{
		byDate: make(map[string][]*MediaEntry),
		byUser: make(map[string][]*MediaEntry),
	}
}

// Dates returns the dates in the order they were encountered during the
// build pass.
func (ai *ArchiveIndex) Dates() []string {
	out := make([]string, len(ai.dateOrder))
	copy(out, ai.dateOrder)
	return out
}

// Users returns usernames in build encounter order.
func (ai *ArchiveIndex) Users() []string {
	out := make([]string, len(ai.userOrder))
	copy(out, ai.userOrder)
	return out
}

func (ai *ArchiveIndex) EntriesForDate(date string) []*MediaEntry {
	entries := ai.byDate[date]
	out := make([]*MediaEntry, len(entries))
	copy(out, entries)
	return out
}

func (ai *ArchiveIndex) EntriesForUser(username string) []*MediaEntry {
	entries := ai.byUser[username]
	out := make([]*MediaEntry, len(entries))
	copy(out, entries)
	return out
}

func (ai *ArchiveIndex) HasUser(username string) bool {
	_, ok := ai.byUser[username]
	return ok
}

func (ai *ArchiveIndex) EntryCount() int {
	return ai.total
}

func (ai *ArchiveIndex) UserStoryCount(username string) int {
	return len(ai.byUser[username])
}
