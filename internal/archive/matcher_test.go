package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sae/internal/models"
	"sae/internal/testutil"
)

func avatarSet(keys ...string) *models.AvatarSet {
	set := models.NewAvatarSet()
	for _, key := range keys {
		set.Put(key, testutil.NewMemRef("archive/Avatars/"+key+"_avatar_20250808.jpg", []byte(key)))
	}
	return set
}

func TestResolveAvatar_Exact(t *testing.T) {
	set := avatarSet("janedoe")

	ref, ok := ResolveAvatar("janedoe", set)
	require.True(t, ok)
	assert.Contains(t, ref.RelPath(), "janedoe")
}

func TestResolveAvatar_DotsStoredAsUnderscores(t *testing.T) {
	set := avatarSet("ava_lanelle")

	_, ok := ResolveAvatar("ava.lanelle", set)
	assert.True(t, ok)
}

func TestResolveAvatar_UnderscoresStoredAsDots(t *testing.T) {
	set := avatarSet("rene.horbach")

	_, ok := ResolveAvatar("rene_horbach", set)
	assert.True(t, ok)
}

func TestResolveAvatar_Normalized(t *testing.T) {
	set := avatarSet("Jane-Doe")

	_, ok := ResolveAvatar("jane.doe", set)
	assert.True(t, ok)
}

func TestResolveAvatar_Substring(t *testing.T) {
	set := avatarSet("janedoe_official")

	_, ok := ResolveAvatar("janedoe", set)
	assert.True(t, ok)
}

func TestResolveAvatar_Miss(t *testing.T) {
	set := avatarSet("alice", "bob")

	ref, ok := ResolveAvatar("charlie", set)
	assert.False(t, ok)
	assert.Nil(t, ref)
}

func TestResolveAvatar_DeterministicAcrossNearMatches(t *testing.T) {
	set := avatarSet("janedoe_a", "janedoe_b")

	for i := 0; i < 10; i++ {
		ref, ok := ResolveAvatar("janedoe", set)
		require.True(t, ok)
		assert.Contains(t, ref.RelPath(), "janedoe_a")
	}
}

func TestResolveAvatar_EmptySet(t *testing.T) {
	_, ok := ResolveAvatar("janedoe", models.NewAvatarSet())
	assert.False(t, ok)
}
