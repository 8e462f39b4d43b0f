package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/casting-agency/internal/auth"
	"github.com/upb/casting-agency/middleware"
	"github.com/upb/casting-agency/services"
	"github.com/upb/casting-agency/utils"
)

// maxBodyBytes caps create and update payloads
const maxBodyBytes = 1 << 20

// CatalogService is the permission-agnostic CRUD surface of one collection
type CatalogService interface {
	List(ctx context.Context, claims auth.ClaimSet, page int) ([]map[string]interface{}, error)
	Create(ctx context.Context, claims auth.ClaimSet, requestID string, body []byte) (int64, error)
	Update(ctx context.Context, claims auth.ClaimSet, requestID string, id int64, body []byte) (map[string]interface{}, error)
	Delete(ctx context.Context, claims auth.ClaimSet, requestID string, id int64) error
}

// ResourceKeys names the response fields of one collection
type ResourceKeys struct {
	// Collection holds the list in GET responses, e.g. "actors"
	Collection string
	// Item holds the patched record in PATCH responses, e.g. "actor"
	Item string
	// UpdatedKey echoes the patched id, "updated" or "edited"
	UpdatedKey string
}

// ActorKeys are the response keys of /actors
var ActorKeys = ResourceKeys{Collection: "actors", Item: "actor", UpdatedKey: "updated"}

// MovieKeys are the response keys of /movies
var MovieKeys = ResourceKeys{Collection: "movies", Item: "movie", UpdatedKey: "edited"}

// ResourceHandler serves the HTTP operations of one catalog collection.
// Every method is a middleware.ProtectedHandlerFunc.
type ResourceHandler struct {
	service CatalogService
	keys    ResourceKeys
	logger  *zap.Logger
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(service CatalogService, keys ResourceKeys, logger *zap.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		keys:    keys,
		logger:  logger.With(zap.String("resource", keys.Collection)),
	}
}

// HandleList handles GET /{collection}?page=N
func (h *ResourceHandler) HandleList(w http.ResponseWriter, r *http.Request, claims auth.ClaimSet) {
	items, err := h.service.List(r.Context(), claims, utils.PageFromRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.succeed(w, map[string]interface{}{h.keys.Collection: items})
}

// HandleCreate handles POST /{collection}
func (h *ResourceHandler) HandleCreate(w http.ResponseWriter, r *http.Request, claims auth.ClaimSet) {
	body, err := readJSONBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), claims, middleware.GetRequestIDFromContext(r.Context()), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.succeed(w, map[string]interface{}{"created": id})
}

// HandleUpdate handles PATCH /{collection}/{id}
func (h *ResourceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request, claims auth.ClaimSet) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body, err := readJSONBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	record, err := h.service.Update(r.Context(), claims, middleware.GetRequestIDFromContext(r.Context()), id, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.succeed(w, map[string]interface{}{
		h.keys.UpdatedKey: id,
		h.keys.Item:       []map[string]interface{}{record},
	})
}

// HandleDelete handles DELETE /{collection}/{id}
func (h *ResourceHandler) HandleDelete(w http.ResponseWriter, r *http.Request, claims auth.ClaimSet) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), claims, middleware.GetRequestIDFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}

	h.succeed(w, map[string]interface{}{"deleted": id})
}

func (h *ResourceHandler) succeed(w http.ResponseWriter, fields map[string]interface{}) {
	if err := utils.WriteSuccess(w, fields); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *ResourceHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	HandleServiceError(w, err, h.logger.With(
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("method", r.Method)))
}

// parseID reads the {id} URL parameter; it must be a positive integer
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.WrapBadRequest("id must be a positive integer", err)
	}
	return id, nil
}

// readJSONBody returns the request body after checking it is sent as JSON
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, services.WrapBadRequest("content type must be application/json", err)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, services.WrapBadRequest("request body too large", err)
		}
		return nil, services.WrapBadRequest("failed to read request body", err)
	}
	return body, nil
}
