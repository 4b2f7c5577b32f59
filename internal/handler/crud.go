package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
	"github.com/isagps/ProfAgendaBack/pkg/response"
)

// CRUDService is the service behavior every entity endpoint set relies on.
// T is the entity, C and U the create and update payloads.
type CRUDService[T, C, U any] interface {
	List(ctx context.Context, q models.PageQuery) ([]T, *models.Pagination, error)
	ListAll(ctx context.Context) ([]T, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, req C) (*T, error)
	Update(ctx context.Context, id string, req U) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CRUDHandler serves the endpoint set shared by every entity: paged list,
// full list, count, get, create, update, delete.
type CRUDHandler[T, C, U any] struct {
	service CRUDService[T, C, U]
}

// NewCRUDHandler constructs the shared endpoint set for one entity service.
func NewCRUDHandler[T, C, U any](svc CRUDService[T, C, U]) *CRUDHandler[T, C, U] {
	return &CRUDHandler[T, C, U]{service: svc}
}

// Register mounts the shared routes onto the group.
func (h *CRUDHandler[T, C, U]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/all", h.ListAll)
	g.GET("/count", h.Count)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List serves the paged collection.
func (h *CRUDHandler[T, C, U]) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), pageQueryFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListAll serves the whole collection without pagination.
func (h *CRUDHandler[T, C, U]) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Count serves the collection size.
func (h *CRUDHandler[T, C, U]) Count(c *gin.Context) {
	total, err := h.service.Count(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": total}, nil)
}

// Get serves a single entity by id.
func (h *CRUDHandler[T, C, U]) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create decodes the payload and persists a new entity.
func (h *CRUDHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update decodes the payload and modifies an existing entity.
func (h *CRUDHandler[T, C, U]) Update(c *gin.Context) {
	var req U
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete removes an entity by id.
func (h *CRUDHandler[T, C, U]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// pageQueryFromContext reads the shared list query parameters.
func pageQueryFromContext(c *gin.Context) models.PageQuery {
	q := models.PageQuery{
		Filter:    strings.TrimSpace(c.Query("filter")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(models.DefaultPageSize))); err == nil {
		q.PageSize = size
	}
	return q.Normalize()
}
