package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/generator"
	"github.com/retailshift/scheduler/internal/metrics"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/version"
)

// Handlers wires the REST surface to the generator and version store, the
// only two entry points a collaborator needs to drive §6's operations.
type Handlers struct {
	db      repository.Database
	store   *version.Store
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewHandlers constructs the handler set. reg may be nil, in which case
// generation runs are not recorded.
func NewHandlers(db repository.Database, store *version.Store, logger *zap.Logger, reg *metrics.Registry) *Handlers {
	return &Handlers{db: db, store: store, logger: logger, metrics: reg}
}

func parseDate(s string) (entity.Date, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// generateRequest is the §6 POST /schedules/generate body.
type generateRequest struct {
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	CreateEmptySchedules bool   `json:"create_empty_schedules"`
	SessionID            string `json:"session_id"`
	Notes                string `json:"notes"`
}

// Generate handles POST /schedules/generate.
func (h *Handlers) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_REQUEST", err.Error()))
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("start_date: %v", err)))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("end_date: %v", err)))
	}
	if end.Before(start) {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE_RANGE", "end_date is before start_date"))
	}

	if h.metrics != nil {
		h.metrics.IncrementActiveGenerations()
		defer h.metrics.DecrementActiveGenerations()
	}

	runStart := time.Now()
	result := generator.Generate(c.Request().Context(), h.db, h.store, start, end, generator.Options{
		CreateEmptySchedules: req.CreateEmptySchedules,
		Notes:                req.Notes,
	})
	duration := time.Since(runStart).Seconds()

	h.logger.Info("generation run completed",
		zap.String("start", req.StartDate), zap.String("end", req.EndDate),
		zap.Int("assignments", len(result.Assignments)), zap.Strings("errors", result.Errors))

	if h.metrics != nil {
		versionNumber := 0
		if result.Version != nil {
			versionNumber = result.Version.Number
		}
		outcome := "success"
		if len(result.Errors) > 0 {
			outcome = "failed"
		}
		h.metrics.RecordGenerationRun(outcome, versionNumber, duration,
			result.Metrics.ConstraintRejections, result.Metrics.TotalAssignments, result.Metrics.FairnessScore)
	}

	if len(result.Errors) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, &Response{
			Data:       result,
			Validation: result.Warnings,
			Error:      &ErrorBody{Code: "GENERATION_FAILED", Message: result.Errors[0]},
			Meta:       Meta{Timestamp: time.Now().UTC()},
		})
	}
	return c.JSON(http.StatusOK, SuccessWithWarnings(result, result.Warnings))
}

// ListAssignments handles GET /schedules?start_date&end_date&version.
func (h *Handlers) ListAssignments(c echo.Context) error {
	start, err := parseDate(c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("start_date: %v", err)))
	}
	end, err := parseDate(c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("end_date: %v", err)))
	}
	versionNumber, err := strconv.Atoi(c.QueryParam("version"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_VERSION", "version must be an integer"))
	}

	assignments, err := h.db.Assignments().GetByDateRange(c.Request().Context(), start, end, versionNumber)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Err("STORAGE_ERROR", err.Error()))
	}
	return c.JSON(http.StatusOK, Success(assignments))
}

// allocateVersionRequest is the §6 POST /schedules/version body.
type allocateVersionRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes"`
}

// AllocateVersion handles POST /schedules/version.
func (h *Handlers) AllocateVersion(c echo.Context) error {
	var req allocateVersionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_REQUEST", err.Error()))
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("start_date: %v", err)))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_DATE", fmt.Sprintf("end_date: %v", err)))
	}

	v, err := h.store.AllocateVersion(c.Request().Context(), start, end, req.Notes, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, Err("VERSION_ALLOCATE_FAILED", err.Error()))
	}
	return c.JSON(http.StatusCreated, Success(v))
}

// statusRequest is the §6 PUT /schedules/versions/{v}/status body.
type statusRequest struct {
	Status string `json:"status"`
}

// SetVersionStatus handles PUT /schedules/versions/{v}/status.
func (h *Handlers) SetVersionStatus(c echo.Context) error {
	versionNumber, err := strconv.Atoi(c.Param("v"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_VERSION", "version must be an integer"))
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_REQUEST", err.Error()))
	}
	if !entity.ValidateVersionStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, Err("INVALID_STATUS", fmt.Sprintf("unrecognized status %q", req.Status)))
	}

	if err := h.store.SetStatus(c.Request().Context(), versionNumber, entity.VersionStatus(req.Status)); err != nil {
		if _, ok := err.(*version.InvalidStatusError); ok {
			return c.JSON(http.StatusConflict, Err("INVALID_STATUS", err.Error()))
		}
		if repository.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, Err("NOT_FOUND", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, Err("STATUS_UPDATE_FAILED", err.Error()))
	}
	return c.JSON(http.StatusOK, Success(map[string]interface{}{"version": versionNumber, "status": req.Status}))
}

// duplicateRequest is the §6 POST /schedules/version/duplicate body.
type duplicateRequest struct {
	SourceVersionID int    `json:"source_version_id"`
	Notes           string `json:"notes"`
}

// DuplicateVersion handles POST /schedules/version/duplicate.
func (h *Handlers) DuplicateVersion(c echo.Context) error {
	var req duplicateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_REQUEST", err.Error()))
	}
	v, err := h.store.Duplicate(c.Request().Context(), req.SourceVersionID, req.Notes)
	if err != nil {
		if repository.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, Err("NOT_FOUND", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, Err("DUPLICATE_FAILED", err.Error()))
	}
	return c.JSON(http.StatusCreated, Success(v))
}

// DeleteVersion handles DELETE /schedules/versions/{v}?delete_entries=bool.
func (h *Handlers) DeleteVersion(c echo.Context) error {
	versionNumber, err := strconv.Atoi(c.Param("v"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, Err("INVALID_VERSION", "version must be an integer"))
	}
	cascade, _ := strconv.ParseBool(c.QueryParam("delete_entries"))
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	if err := h.store.Delete(c.Request().Context(), versionNumber, cascade, force); err != nil {
		if _, ok := err.(*version.PublishedDeleteError); ok {
			return c.JSON(http.StatusConflict, Err("PUBLISHED_VERSION", err.Error()))
		}
		if repository.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, Err("NOT_FOUND", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, Err("DELETE_FAILED", err.Error()))
	}
	return c.NoContent(http.StatusNoContent)
}

// Health handles GET /health.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, Success(map[string]string{"status": "ok"}))
}
