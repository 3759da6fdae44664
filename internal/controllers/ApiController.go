package controllers

import (
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	json "github.com/goccy/go-json"

	"sae/internal/archive"
	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/services"
)

var dateParamRe = regexp.MustCompile(`^\d{8}$`)

type ApiController struct {
	logger   providers.Logger
	service  services.ArchiveServiceInterface
	supplier archive.FileSupplierInterface
	cache    providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ArchiveServiceInterface, supplier archive.FileSupplierInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		service:  service,
		supplier: supplier,
		cache:    cache,
	}
}

type userSummary struct {
	Username   string           `json:"username"`
	Avatar     string           `json:"avatar,omitempty"`
	StoryCount int              `json:"storyCount"`
	Stats      models.UserStats `json:"stats"`
}

type userGroup struct {
	Username string               `json:"username"`
	Avatar   string               `json:"avatar,omitempty"`
	Stats    models.UserStats     `json:"stats"`
	Stories  []*models.MediaEntry `json:"stories"`
}

type dateGroup struct {
	Date    string               `json:"date"`
	Stories []*models.MediaEntry `json:"stories"`
}

type userDetail struct {
	Username string           `json:"username"`
	Avatar   string           `json:"avatar,omitempty"`
	Stats    models.UserStats `json:"stats"`
	Dates    []dateGroup      `json:"dates"`
}

type profileGroup struct {
	Username  string                    `json:"username"`
	Snapshots []*models.ProfileSnapshot `json:"snapshots"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) avatarPath(username string) string {
	if ref, ok := archive.ResolveAvatar(username, ac.service.GetAvatars()); ok {
		return ref.RelPath()
	}
	return ""
}

// GetDates lists archive dates, newest first.
func (ac *ApiController) GetDates(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "dates", func() (any, error) {
		dates := ac.service.GetDates()
		archive.SortDatesDescending(dates)
		return map[string]any{"dates": dates}, nil
	})
}

// GetStories returns one date's stories grouped per user, primary
// account first. An unknown date yields an empty group list.
func (ac *ApiController) GetStories(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !dateParamRe.MatchString(date) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.serveFromCacheOrCompute(w, "stories:"+date, func() (any, error) {
		index := ac.service.GetIndex()
		entries := index.EntriesForDate(date)

		byUser, order := archive.GroupByUser(entries)
		archive.SortUsersForDisplay(order, ac.service.PrimaryAccount(), func(u string) int {
			return len(byUser[u])
		})

		groups := make([]userGroup, 0, len(order))
		for _, user := range order {
			groups = append(groups, userGroup{
				Username: user,
				Avatar:   ac.avatarPath(user),
				Stats:    archive.ComputeUserStats(index.EntriesForUser(user)),
				Stories:  byUser[user],
			})
		}
		return map[string]any{"date": date, "users": groups}, nil
	})
}

// GetUsers lists every user in the archive with story counts and
// activity stats.
func (ac *ApiController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "users", func() (any, error) {
		index := ac.service.GetIndex()
		users := index.Users()
		archive.SortUsersForDisplay(users, ac.service.PrimaryAccount(), index.UserStoryCount)

		summaries := make([]userSummary, 0, len(users))
		for _, user := range users {
			summaries = append(summaries, userSummary{
				Username:   user,
				Avatar:     ac.avatarPath(user),
				StoryCount: index.UserStoryCount(user),
				Stats:      archive.ComputeUserStats(index.EntriesForUser(user)),
			})
		}
		return map[string]any{"users": summaries}, nil
	})
}

// GetUser returns one user's stories grouped per date, newest date
// first.
func (ac *ApiController) GetUser(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("u")
	if username == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !ac.service.GetIndex().HasUser(username) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ac.serveFromCacheOrCompute(w, "user:"+username, func() (any, error) {
		index := ac.service.GetIndex()
		entries := index.EntriesForUser(username)

		byDate, order := archive.GroupByDate(entries)
		archive.SortDatesDescending(order)

		groups := make([]dateGroup, 0, len(order))
		for _, date := range order {
			groups = append(groups, dateGroup{Date: date, Stories: byDate[date]})
		}
		return userDetail{
			Username: username,
			Avatar:   ac.avatarPath(username),
			Stats:    archive.ComputeUserStats(entries),
			Dates:    groups,
		}, nil
	})
}

// GetProfiles lists captured profile snapshots grouped per user.
func (ac *ApiController) GetProfiles(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "profiles", func() (any, error) {
		snapshots := ac.service.GetSnapshots()

		groups := make([]profileGroup, 0, snapshots.Len())
		for _, user := range snapshots.Users() {
			groups = append(groups, profileGroup{
				Username:  user,
				Snapshots: snapshots.ForUser(user),
			})
		}
		return map[string]any{"profiles": groups}, nil
	})
}

// GetFile streams an archived file. The supplier rejects traversal, so
// anything it refuses to resolve is a plain 404.
func (ac *ApiController) GetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ref, ok := ac.supplier.Resolve(path)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	rc, err := ref.Open()
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "open %s: %s", path, err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	// Sniff the content type from the first chunk, then replay it.
	head := make([]byte, 3072)
	n, _ := io.ReadFull(rc, head)
	head = head[:n]

	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("Content-Length", strconv.FormatInt(ref.Size(), 10))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(head); err != nil {
		return
	}
	_, _ = io.Copy(w, rc)
}
