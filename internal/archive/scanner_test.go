package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sae/internal/models"
	"sae/internal/testutil"
)

func ref(path string) models.ContentRef {
	return testutil.NewMemRef(path, []byte("x"))
}

func TestBuildFromRefs(t *testing.T) {
	scanner := NewScanner(testParser(), nil, &testutil.MockLogger{})

	refs := []models.ContentRef{
		ref("archive/Avatars/janedoe_avatar_20250808.jpg"),
		ref("archive/20250808/janedoe/janedoe_story_20250808_01.jpg"),
		ref("archive/20250808/janedoe/janedoe_story_20250808_02.mp4"),
		ref("archive/20250808/medicalmedium/mm_story_reshare_janedoe_01.jpg"),
		ref("archive/20250808/AccountCaptures/bob_profile_20250808_121530.png"),
		ref("archive/20250808/janedoe/notes.txt"),
		ref("archive/.DS_Store"),
	}

	result := scanner.BuildFromRefs(refs)

	assert.Equal(t, 3, result.Index.EntryCount())
	assert.Equal(t, []string{"20250808"}, result.Index.Dates())

	_, ok := result.Avatars.Get("janedoe")
	assert.True(t, ok)

	require.Equal(t, []string{"bob"}, result.Snapshots.Users())
	snaps := result.Snapshots.ForUser("bob")
	require.Len(t, snaps, 1)
	assert.NotNil(t, snaps[0].Ref)

	// The file list records everything supplied, parseable or not.
	assert.Len(t, result.Files, len(refs))
}

func TestBuildFromRefs_AttachesContentRefs(t *testing.T) {
	scanner := NewScanner(testParser(), nil, &testutil.MockLogger{})

	result := scanner.BuildFromRefs([]models.ContentRef{
		ref("archive/20250808/janedoe/janedoe_story_20250808_01.jpg"),
	})

	entries := result.Index.EntriesForDate("20250808")
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Ref)
	assert.Equal(t, "archive/20250808/janedoe/janedoe_story_20250808_01.jpg", entries[0].Ref.RelPath())
}

func TestBuildFromRefs_Empty(t *testing.T) {
	scanner := NewScanner(testParser(), nil, &testutil.MockLogger{})

	result := scanner.BuildFromRefs(nil)

	assert.Equal(t, 0, result.Index.EntryCount())
	assert.Equal(t, 0, result.Avatars.Len())
	assert.Equal(t, 0, result.Snapshots.Len())
	assert.Empty(t, result.Files)
}

func TestBuildFromRefs_AvatarLastWriterWins(t *testing.T) {
	scanner := NewScanner(testParser(), nil, &testutil.MockLogger{})

	result := scanner.BuildFromRefs([]models.ContentRef{
		ref("archive/Avatars/janedoe_avatar_20250101.jpg"),
		ref("archive/Avatars/janedoe_avatar_20250808.jpg"),
	})

	avatar, ok := result.Avatars.Get("janedoe")
	require.True(t, ok)
	assert.Contains(t, avatar.RelPath(), "20250808")
}
