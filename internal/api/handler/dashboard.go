package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/newsdash/internal/api/response"
	"github.com/kiranshivaraju/newsdash/internal/dashboard"
	"github.com/kiranshivaraju/newsdash/internal/jobmon"
	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
)

// Dashboard defines the operations the handlers depend on.
type Dashboard interface {
	State() dashboard.State
	Refresh(ctx context.Context)
	SetCategory(ctx context.Context, value string) error
	SetDateBucket(ctx context.Context, value query.DateBucket) error
	SetScoreMin(ctx context.Context, n int) error
	ToggleTrustLevel(ctx context.Context, level query.TrustLevel) error
	SetSortBy(ctx context.Context, value string) error
	NextPage(ctx context.Context)
	PrevPage(ctx context.Context)
	Collect(ctx context.Context) (bool, jobmon.Snapshot)
	Clip(ctx context.Context, id int64, folder string) error
	Unclip(ctx context.Context, id int64) error
	Clips(ctx context.Context) (models.ClipFolders, error)
	Search(ctx context.Context, q string) (*models.SearchResult, error)
}

var _ Dashboard = (*dashboard.Controller)(nil)

// CollectResult is the body of POST /ui/collect.
type CollectResult struct {
	Started bool            `json:"started"`
	Job     jobmon.Snapshot `json:"job"`
}

// NewStateHandler returns an http.HandlerFunc for GET /ui/state.
func NewStateHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, d.State())
	}
}

// NewRefreshHandler returns an http.HandlerFunc for POST /ui/refresh.
func NewRefreshHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Refresh(r.Context())
		response.JSON(w, d.State())
	}
}

// NewCategoryHandler returns an http.HandlerFunc for PUT /ui/filters/category.
func NewCategoryHandler(d Dashboard) http.HandlerFunc {
	return filterHandler(d, func(ctx context.Context, v string) error {
		return d.SetCategory(ctx, v)
	})
}

// NewDateHandler returns an http.HandlerFunc for PUT /ui/filters/date.
func NewDateHandler(d Dashboard) http.HandlerFunc {
	return filterHandler(d, func(ctx context.Context, v string) error {
		return d.SetDateBucket(ctx, query.DateBucket(v))
	})
}

// NewSortHandler returns an http.HandlerFunc for PUT /ui/filters/sort.
func NewSortHandler(d Dashboard) http.HandlerFunc {
	return filterHandler(d, func(ctx context.Context, v string) error {
		return d.SetSortBy(ctx, v)
	})
}

// NewScoreHandler returns an http.HandlerFunc for PUT /ui/filters/score.
func NewScoreHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value *int `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "value must be an integer", nil)
			return
		}
		if err := d.SetScoreMin(r.Context(), *req.Value); err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, d.State())
	}
}

// NewTrustHandler returns an http.HandlerFunc for POST /ui/filters/trust/{level}.
func NewTrustHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level := query.TrustLevel(chi.URLParam(r, "level"))
		if err := d.ToggleTrustLevel(r.Context(), level); err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, d.State())
	}
}

// NewNextPageHandler returns an http.HandlerFunc for POST /ui/page/next.
func NewNextPageHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.NextPage(r.Context())
		response.JSON(w, d.State())
	}
}

// NewPrevPageHandler returns an http.HandlerFunc for POST /ui/page/prev.
func NewPrevPageHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.PrevPage(r.Context())
		response.JSON(w, d.State())
	}
}

// NewCollectHandler returns an http.HandlerFunc for POST /ui/collect. The
// response is 202 whether or not a new cycle started; Started tells which.
func NewCollectHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started, job := d.Collect(r.Context())
		response.Accepted(w, CollectResult{Started: started, Job: job})
	}
}

// NewClipHandler returns an http.HandlerFunc for POST /ui/articles/{id}/clip.
func NewClipHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := articleID(w, r)
		if !ok {
			return
		}

		var req struct {
			Folder string `json:"folder"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
		}

		if err := d.Clip(r.Context(), id, req.Folder); err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, d.State())
	}
}

// NewUnclipHandler returns an http.HandlerFunc for DELETE /ui/articles/{id}/clip.
func NewUnclipHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := articleID(w, r)
		if !ok {
			return
		}
		if err := d.Unclip(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, d.State())
	}
}

// NewClipsHandler returns an http.HandlerFunc for GET /ui/clips.
func NewClipsHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folders, err := d.Clips(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, folders)
	}
}

// NewSearchHandler returns an http.HandlerFunc for POST /ui/search.
func NewSearchHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		q := strings.TrimSpace(req.Query)
		if q == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "query is required", nil)
			return
		}

		res, err := d.Search(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, res)
	}
}

func filterHandler(d Dashboard, set func(ctx context.Context, v string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value *string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "value must be a string", nil)
			return
		}
		if err := set(r.Context(), *req.Value); err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, d.State())
	}
}

func articleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

var filterErrors = []error{
	query.ErrUnknownCategory,
	query.ErrUnknownDateBucket,
	query.ErrScoreOutOfRange,
	query.ErrUnknownTrustLevel,
	query.ErrUnknownSortKey,
}

func writeError(w http.ResponseWriter, err error) {
	for _, target := range filterErrors {
		if errors.Is(err, target) {
			response.Error(w, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
			return
		}
	}
	if errors.Is(err, dashboard.ErrBackendUnavailable) {
		response.Error(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", "The news backend did not accept the request", nil)
		return
	}
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
}
