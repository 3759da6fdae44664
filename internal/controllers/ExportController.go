package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"sae/internal/export"
	"sae/internal/models"
	"sae/internal/providers"
	"sae/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// exportRequest is the wire form of an export job. Capture and
// screenshot jobs target one story by its archive path; experience
// jobs select stories by grouping.
type exportRequest struct {
	Type     string `json:"type"`
	Grouping string `json:"grouping"`
	Username string `json:"username"`
	Date     string `json:"date"`
	Path     string `json:"path"`
}

type ExportController struct {
	logger   providers.Logger
	service  services.ArchiveServiceInterface
	composer export.ComposerInterface
}

func NewExportController(logger providers.Logger, service services.ArchiveServiceInterface, composer export.ComposerInterface) *ExportController {
	return &ExportController{
		logger:   logger,
		service:  service,
		composer: composer,
	}
}

// StartExport launches a job. Responds 202 with the job id, 409 when a
// job is already running, 404 when the selection matches nothing.
func (ec *ExportController) StartExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var payload exportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req, err := ec.buildRequest(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	id, err := ec.composer.Start(req)
	if err != nil {
		switch {
		case errors.Is(err, export.ErrJobActive):
			http.Error(w, "Conflict", http.StatusConflict)
		case errors.Is(err, export.ErrNoRenderableContent):
			http.Error(w, "Not Found", http.StatusNotFound)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	ec.logger.Infof(providers.TypeExport, "export %s started: %s", id, payload.Type)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// ExportStatus reports the current (or last finished) job.
func (ec *ExportController) ExportStatus(w http.ResponseWriter, r *http.Request) {
	gson, err := json.Marshal(ec.composer.Status())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// CancelExport aborts the active job. Always 204; cancelling an idle
// composer is a no-op.
func (ec *ExportController) CancelExport(w http.ResponseWriter, r *http.Request) {
	ec.composer.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (ec *ExportController) buildRequest(payload *exportRequest) (*export.JobRequest, error) {
	switch export.JobType(payload.Type) {
	case export.JobCapture, export.JobScreenshot:
		if payload.Path == "" {
			return nil, errors.New("path is required")
		}
		entry := ec.findEntry(payload.Path)
		if entry == nil {
			return &export.JobRequest{Type: export.JobType(payload.Type)}, nil
		}
		return &export.JobRequest{
			Type:     export.JobType(payload.Type),
			Username: entry.Username,
			Date:     entry.Date,
			Entries:  []*models.MediaEntry{entry},
		}, nil

	case export.JobExperience:
		grouping := export.GroupingType(payload.Grouping)
		entries, err := ec.selectEntries(grouping, payload.Username, payload.Date)
		if err != nil {
			return nil, err
		}
		return &export.JobRequest{
			Type:     export.JobExperience,
			Grouping: grouping,
			Username: payload.Username,
			Date:     payload.Date,
			Entries:  entries,
		}, nil

	default:
		return nil, errors.New("unknown export type")
	}
}

func (ec *ExportController) selectEntries(grouping export.GroupingType, username, date string) ([]*models.MediaEntry, error) {
	index := ec.service.GetIndex()

	switch grouping {
	case export.GroupUserDate:
		if username == "" || date == "" {
			return nil, errors.New("username and date are required")
		}
		var selected []*models.MediaEntry
		for _, entry := range index.EntriesForDate(date) {
			if entry.Username == username {
				selected = append(selected, entry)
			}
		}
		return selected, nil

	case export.GroupDate:
		if date == "" {
			return nil, errors.New("date is required")
		}
		return index.EntriesForDate(date), nil

	case export.GroupUser:
		if username == "" {
			return nil, errors.New("username is required")
		}
		return index.EntriesForUser(username), nil

	default:
		return nil, errors.New("unknown grouping")
	}
}

func (ec *ExportController) findEntry(path string) *models.MediaEntry {
	index := ec.service.GetIndex()
	for _, date := range index.Dates() {
		for _, entry := range index.EntriesForDate(date) {
			if entry.Path == path {
				return entry
			}
		}
	}
	return nil
}
