package models

// AvatarSet maps avatar usernames to the image bytes handle parsed from
// the Avatars folder. Last writer wins when the same username appears in
// several avatar files.
type AvatarSet struct {
	refs map[string]ContentRef
}

func NewAvatarSet() *AvatarSet {
	return &AvatarSet{refs: make(map[string]ContentRef)}
}

func (as *AvatarSet) Put(username string, ref ContentRef) {
	as.refs[username] = ref
}

func (as *AvatarSet) Get(username string) (ContentRef, bool) {
	ref, ok := as.refs[username]
	return ref, ok
}

// Keys returns the known avatar usernames in unspecified order.
func (as *AvatarSet) Keys() []string {
	keys := make([]string, 0, len(as.refs))
	for k := range as.refs {
		keys = append(keys, k)
	}
	return keys
}

func (as *AvatarSet) Len() int {
	return len(as.refs)
}
