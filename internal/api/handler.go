// Package api exposes the location resolution pipeline over HTTP for the form snippet.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/locator/internal/geolocation"
	"github.com/UnknownOlympus/locator/internal/models"
	"github.com/UnknownOlympus/locator/internal/repository"
	"github.com/UnknownOlympus/locator/internal/service"
	"github.com/gin-gonic/gin"
)

// Resolver is the pipeline the handler drives.
type Resolver interface {
	Resolve(ctx context.Context, req service.Request) (*models.ResolvedLocation, error)
}

// Handler serves resolution requests.
type Handler struct {
	log               *slog.Logger
	resolver          Resolver
	vocabularies      repository.Interface // nil when no store is configured
	defaultVocabulary string
}

type positionDTO struct {
	Latitude  *float64 `json:"latitude"  binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// errorDTO mirrors the browser's GeolocationPositionError.
type errorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type resolveRequest struct {
	Position   *positionDTO `json:"position"`
	Error      *errorDTO    `json:"error"`
	Candidates []string     `json:"candidates"`
	Vocabulary string       `json:"vocabulary"`
}

type failureResponse struct {
	Reason  service.Reason `json:"reason"`
	Message string         `json:"message"`
}

// Errors returned to clients for malformed requests.
var (
	errPositionOrError = errors.New("exactly one of position and error must be set")
	errNoStore         = errors.New("vocabulary store is not configured")
)

// NewHandler creates a Handler. vocabularies may be nil, in which case requests must
// carry their candidates inline.
func NewHandler(
	log *slog.Logger,
	resolver Resolver,
	vocabularies repository.Interface,
	defaultVocabulary string,
) *Handler {
	return &Handler{
		log:               log,
		resolver:          resolver,
		vocabularies:      vocabularies,
		defaultVocabulary: defaultVocabulary,
	}
}

// Register mounts the handler's routes.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/api/v1/resolve", h.resolve)
}

func (h *Handler) resolve(ctx *gin.Context) {
	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if (req.Position == nil) == (req.Error == nil) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errPositionOrError.Error()})
		return
	}

	report := toReport(req)

	// A reported failure or an out-of-range position ends the resolution before
	// matching, so the candidate source is not consulted for it.
	var candidates []string
	if report.Failure == nil && report.Position.Valid() {
		var (
			status int
			err    error
		)
		candidates, status, err = h.candidates(ctx.Request.Context(), req)
		if err != nil {
			ctx.JSON(status, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.resolver.Resolve(ctx.Request.Context(), service.Request{
		Locator:    geolocation.NewReported(report),
		Candidates: candidates,
		Observer: service.ObserverFunc(func(state service.State) {
			h.log.DebugContext(ctx.Request.Context(), "Resolution state", "state", state.String())
		}),
	})
	if err != nil {
		failure, ok := service.AsFailure(err)
		if !ok {
			h.log.ErrorContext(ctx.Request.Context(), "Unexpected resolution error", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		status := http.StatusBadGateway
		if failure.Acquisition() {
			status = http.StatusUnprocessableEntity
		}
		ctx.JSON(status, failureResponse{Reason: failure.Reason, Message: failure.Message()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// candidates returns the inline candidates when the request carries any, otherwise the
// values of the named (or default) vocabulary. No vocabulary at all means an empty set.
func (h *Handler) candidates(ctx context.Context, req resolveRequest) ([]string, int, error) {
	if req.Candidates != nil {
		return req.Candidates, http.StatusOK, nil
	}

	name := req.Vocabulary
	if name == "" {
		name = h.defaultVocabulary
	}
	if name == "" {
		return nil, http.StatusOK, nil
	}

	if h.vocabularies == nil {
		return nil, http.StatusBadRequest, errNoStore
	}

	values, err := h.vocabularies.FetchCandidates(ctx, name)
	switch {
	case errors.Is(err, repository.ErrVocabularyNotFound):
		return nil, http.StatusNotFound, err
	case err != nil:
		h.log.ErrorContext(ctx, "Failed to load vocabulary", "vocabulary", name, "error", err)
		return nil, http.StatusInternalServerError, errors.New("failed to load vocabulary")
	}

	return values, http.StatusOK, nil
}

func toReport(req resolveRequest) geolocation.Report {
	if req.Error != nil {
		return geolocation.Report{Failure: &geolocation.ReportedFailure{
			Code:    req.Error.Code,
			Message: req.Error.Message,
		}}
	}

	return geolocation.Report{Position: &models.Coordinates{
		Latitude:  *req.Position.Latitude,
		Longitude: *req.Position.Longitude,
	}}
}
