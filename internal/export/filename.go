package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GroupingType selects the naming scheme for a composed experience.
type GroupingType string

const (
	GroupUserDate GroupingType = "user-date"
	GroupDate     GroupingType = "date"
	GroupUser     GroupingType = "user"
)

func stripExtension(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// CaptureFilename names a single-story capture after its source file,
// with the container extension of whichever backend rendered it.
func CaptureFilename(original string, ext string) string {
	return stripExtension(original) + "_screencapture." + ext
}

// ScreenshotFilename names a still frame export. Always PNG.
func ScreenshotFilename(original string) string {
	return stripExtension(original) + "_screenshot.png"
}

// ExperienceFilename names a combined export. The count is the number
// of stories the caller supplied, regardless of how many rendered.
func ExperienceFilename(grouping GroupingType, username, date string, count int) string {
	switch grouping {
	case GroupDate:
		return fmt.Sprintf("visual_experience_%s_%dstories.mp4", date, count)
	case GroupUser:
		return fmt.Sprintf("visual_experience_%s_%dstories.mp4", username, count)
	default:
		return fmt.Sprintf("visual_experience_%s_%s_%dstories.mp4", username, date, count)
	}
}
