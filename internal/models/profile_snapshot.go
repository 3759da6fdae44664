package models

// ProfileSnapshot is one captured profile-page screenshot from an
// AccountCaptures folder. Distinct from story media.
type ProfileSnapshot struct {
	Username string     `json:"username"`
	Date     string     `json:"date"`
	Filename string     `json:"filename"`
	Path     string     `json:"path"`
	Ref      ContentRef `json:"-"`
}

// SnapshotSet groups profile snapshots under their extracted username.
type SnapshotSet struct {
	byUser    map[string][]*ProfileSnapshot
	userOrder []string
}

func NewSnapshotSet() *SnapshotSet {
	return &SnapshotSet{byUser: make(map[string][]*ProfileSnapshot)}
}

func (ss *SnapshotSet) Add(snap *ProfileSnapshot) {
	if _, ok := ss.byUser[snap.Username]; !ok {
		ss.userOrder = append(ss.userOrder, snap.Username)
	}
	ss.byUser[snap.Username] = append(ss.byUser[snap.Username], snap)
}

func (ss *SnapshotSet) Users() []string {
	out := make([]string, len(ss.userOrder))
	copy(out, ss.userOrder)
	return out
}

func (ss *SnapshotSet) ForUser(username string) []*ProfileSnapshot {
	snaps := ss.byUser[username]
	out := make([]*ProfileSnapshot, len(snaps))
	copy(out, snaps)
	return out
}

func (ss *SnapshotSet) Len() int {
	n := 0
	for _, snaps := range ss.byUser {
		n += len(snaps)
	}
	return n
}
