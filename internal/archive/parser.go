package archive

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"sae/internal/models"
	"sae/internal/structures"
)

// ReservedCapturesDir is the per-date folder holding profile snapshots
// instead of user stories.
const ReservedCapturesDir = "AccountCaptures"

const avatarsDir = "Avatars"

const reshareMarker = "_reshare_"

var (
	dateRe     = regexp.MustCompile(`^\d{8}$`)
	sequenceRe = regexp.MustCompile(`_(\d+)\.[A-Za-z0-9]+$`)
	avatarRe   = regexp.MustCompile(`(?i)^(.+)_avatar_\d{8}\.(jpg|jpeg)$`)
)

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".webm": {},
}

var mediaExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".mp4": {}, ".mov": {}, ".webm": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

// Parser turns relative archive paths into structured entries. All
// methods return nil for paths that do not belong to the archive layout;
// a skipped path is not an error.
type Parser struct {
	primary string
}

func NewParser(conf *structures.Config) *Parser {
	return &Parser{primary: conf.Archive.PrimaryAccount}
}

func (p *Parser) PrimaryAccount() string {
	return p.primary
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}

func IsMediaFile(filename string) bool {
	_, ok := mediaExtensions[extensionOf(filename)]
	return ok
}

func IsImageFile(filename string) bool {
	_, ok := imageExtensions[extensionOf(filename)]
	return ok
}

func MediaTypeOf(filename string) models.MediaType {
	if _, ok := videoExtensions[extensionOf(filename)]; ok {
		return models.MediaVideo
	}
	return models.MediaImage
}

// ParsePath maps root/date/user/file to a MediaEntry. The content handle
// is attached by the scanner afterwards.
func (p *Parser) ParsePath(relPath string) *models.MediaEntry {
	parts := strings.Split(relPath, "/")
	if len(parts) < 4 {
		return nil
	}

	date := parts[1]
	user := parts[2]
	filename := parts[len(parts)-1]

	if !dateRe.MatchString(date) {
		return nil
	}
	if user == ReservedCapturesDir {
		return nil
	}
	if !IsMediaFile(filename) {
		return nil
	}

	return &models.MediaEntry{
		Username:       user,
		Filename:       filename,
		Date:           date,
		Type:           MediaTypeOf(filename),
		SequenceNumber: extractSequence(filename),
		Path:           relPath,
		ReshareInfo:    p.extractReshareInfo(user, filename),
	}
}

// extractSequence parses the trailing numeric token used for intra-user
// ordering, e.g. username_story_20250808_01.jpg -> 1. Absent token is 0.
func extractSequence(filename string) int {
	m := sequenceRe.FindStringSubmatch(filename)
	if m == nil {
		return 0
	}
	return cast.ToInt(m[1])
}

// ParseAvatarPath matches root/Avatars/username_avatar_YYYYMMDD.jpg and
// returns the captured username.
func (p *Parser) ParseAvatarPath(relPath string) (username string, ok bool) {
	parts := strings.Split(relPath, "/")
	if len(parts) < 3 || parts[1] != avatarsDir {
		return "", false
	}
	m := avatarRe.FindStringSubmatch(parts[2])
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseSnapshotPath matches root/date/AccountCaptures/image and extracts
// the snapshot subject. The primary account is never a snapshot subject.
func (p *Parser) ParseSnapshotPath(relPath string) *models.ProfileSnapshot {
	parts := strings.Split(relPath, "/")
	if len(parts) < 4 {
		return nil
	}
	date := parts[1]
	filename := parts[3]
	if !dateRe.MatchString(date) || parts[2] != ReservedCapturesDir || !IsImageFile(filename) {
		return nil
	}

	username := ExtractSnapshotUsername(filename)
	if username == "" || username == p.primary {
		return nil
	}

	return &models.ProfileSnapshot{
		Username: username,
		Date:     date,
		Filename: filename,
		Path:     relPath,
	}
}

var snapshotExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)$`)

var snapshotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+)_profile_\d{8}_\d{6}$`),
	regexp.MustCompile(`^(.+)_\d{8}_\d{6}$`),
	regexp.MustCompile(`^(.+)_screenshot_\d{8}$`),
	regexp.MustCompile(`^(.+)_\d{8}$`),
	regexp.MustCompile(`^(.+)_profile$`),
}

var (
	digitRunRe        = regexp.MustCompile(`\d{6}|\d{8}`)
	trailingDigitsRe  = regexp.MustCompile(`^(.+?)_[\d_]+$`)
	profileSuffixRe   = regexp.MustCompile(`_profile$`)
	capturesSuffixRe  = regexp.MustCompile(`_screenshot$`)
	profileRemnantRe  = regexp.MustCompile(`_profile_.*$`)
	edgeSeparatorsRe  = regexp.MustCompile(`^[._]+|[._]+$`)
)

// ExtractSnapshotUsername applies the ordered snapshot filename patterns,
// first match wins, then normalizes the result.
func ExtractSnapshotUsername(filename string) string {
	name := snapshotExtRe.ReplaceAllString(filename, "")

	extracted := ""
	for _, re := range snapshotPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			extracted = m[1]
			break
		}
	}

	// Bare name with no timestamp-looking digit runs.
	if extracted == "" && !digitRunRe.MatchString(name) {
		extracted = name
	}

	// Everything before a trailing run of digits and underscores.
	if extracted == "" {
		if m := trailingDigitsRe.FindStringSubmatch(name); m != nil {
			extracted = m[1]
		}
	}

	if extracted == "" {
		extracted = name
	}

	extracted = profileSuffixRe.ReplaceAllString(extracted, "")
	extracted = capturesSuffixRe.ReplaceAllString(extracted, "")
	extracted = profileRemnantRe.ReplaceAllString(extracted, "")
	extracted = edgeSeparatorsRe.ReplaceAllString(extracted, "")

	return extracted
}

// Reshare attribution. The filename may carry a chain of
// _reshare_<user> markers; the last one is treated as the most recent
// attribution. The patterns are tried top to bottom so the chain scan
// always wins over the single trailing form.
type reshareKind int

const (
	reshareNone reshareKind = iota
	reshareSingle
	reshareChain
)

type reshareMatch struct {
	kind reshareKind
	user string
	len  int
}

var resharePatterns = []func(string) reshareMatch{
	matchReshareChain,
	matchReshareTrailing,
}

// The story sequence suffix is not part of the attributed username:
// ..._reshare_janedoe_01.jpg attributes to janedoe.
var reshareSeqSuffixRe = regexp.MustCompile(`(_\d+)+$`)

func trimReshareToken(token string) string {
	return reshareSeqSuffixRe.ReplaceAllString(token, "")
}

func (p *Parser) extractReshareInfo(username, filename string) *models.ReshareInfo {
	if username != p.primary {
		return nil
	}
	for _, match := range resharePatterns {
		if m := match(filename); m.kind != reshareNone {
			return &models.ReshareInfo{
				OriginalUser: m.user,
				ReshareCount: m.len,
			}
		}
	}
	return nil
}

// matchReshareChain scans for repeated markers. A token runs from the
// marker to the next marker or the first dot after it, must be non-empty
// and needs a terminator; trailing markers with no dot never match.
func matchReshareChain(filename string) reshareMatch {
	var tokens []string
	pos := 0
	for {
		idx := strings.Index(filename[pos:], reshareMarker)
		if idx < 0 {
			break
		}
		start := pos + idx + len(reshareMarker)
		rest := filename[start:]

		next := strings.Index(rest, reshareMarker)
		dot := strings.Index(rest, ".")
		end := -1
		switch {
		case next >= 0 && (dot < 0 || next < dot):
			end = next
		case dot >= 0:
			end = dot
		}
		if end > 0 {
			if token := trimReshareToken(rest[:end]); token != "" {
				tokens = append(tokens, token)
			}
		}
		pos = start
	}
	if len(tokens) == 0 {
		return reshareMatch{kind: reshareNone}
	}
	return reshareMatch{
		kind: reshareChain,
		user: tokens[len(tokens)-1],
		len:  len(tokens),
	}
}

// matchReshareTrailing handles a single marker whose token runs up to
// the extension, dots allowed inside the token.
func matchReshareTrailing(filename string) reshareMatch {
	idx := strings.Index(filename, reshareMarker)
	if idx < 0 {
		return reshareMatch{kind: reshareNone}
	}
	start := idx + len(reshareMarker)
	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= start {
		return reshareMatch{kind: reshareNone}
	}
	token := trimReshareToken(filename[start:lastDot])
	if token == "" {
		return reshareMatch{kind: reshareNone}
	}
	return reshareMatch{
		kind: reshareSingle,
		user: token,
		len:  1,
	}
}
