package archive

import (
	"sort"
	"strings"

	"sae/internal/models"
)

// Avatar resolution tries a fixed chain of matching strategies, first
// success wins. Each strategy is pure so it can be tested on its own.
// No strategy matching is not a failure: callers render a placeholder.
type matchStrategy func(username string, avatars *models.AvatarSet) (models.ContentRef, bool)

var avatarStrategies = []matchStrategy{
	matchExact,
	matchDotsAsUnderscores,
	matchUnderscoresAsDots,
	matchNormalized,
	matchSubstring,
}

// ResolveAvatar finds the avatar image for a story username against the
// set of avatar keys parsed from the Avatars folder.
func ResolveAvatar(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	for _, strategy := range avatarStrategies {
		if ref, ok := strategy(username, avatars); ok {
			return ref, true
		}
	}
	return nil, false
}

func matchExact(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	return avatars.Get(username)
}

// ava.lanelle stored as ava_lanelle.
func matchDotsAsUnderscores(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	return avatars.Get(strings.ReplaceAll(username, ".", "_"))
}

// rene_horbach stored as rene.horbach.
func matchUnderscoresAsDots(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	return avatars.Get(strings.ReplaceAll(username, "_", "."))
}

func normalizeKey(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(".", "", "_", "", "-", "").Replace(s)
}

// sortedKeys keeps the scan order stable so a query against a set with
// several near-matches always resolves the same avatar.
func sortedKeys(avatars *models.AvatarSet) []string {
	keys := avatars.Keys()
	sort.Strings(keys)
	return keys
}

func matchNormalized(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	want := normalizeKey(username)
	for _, key := range sortedKeys(avatars) {
		if normalizeKey(key) == want {
			return avatars.Get(key)
		}
	}
	return nil, false
}

func matchSubstring(username string, avatars *models.AvatarSet) (models.ContentRef, bool) {
	lower := strings.ToLower(username)
	for _, key := range sortedKeys(avatars) {
		lowerKey := strings.ToLower(key)
		if strings.Contains(lowerKey, lower) || strings.Contains(lower, lowerKey) {
			return avatars.Get(key)
		}
	}
	return nil, false
}
