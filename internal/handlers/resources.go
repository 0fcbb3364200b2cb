package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stevehedden/kgcatalog/internal/catalog"
	"github.com/stevehedden/kgcatalog/pkg/errors"
	"github.com/stevehedden/kgcatalog/pkg/response"
)

const sortableColumns = "id label description website license part_of latest_version latest_release score"

// ResourceHandler serves the ranked catalog table.
type ResourceHandler struct {
	svc *catalog.Service
}

// NewResourceHandler wires the catalog pipeline service into HTTP handlers.
func NewResourceHandler(svc *catalog.Service) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

type listResourcesQuery struct {
	Kind    string `form:"kind"`
	Filter  string `form:"filter"`
	Column  string `form:"column" binding:"omitempty,oneof=id label description website license part_of latest_version latest_release score"`
	Sort    string `form:"sort" binding:"omitempty,oneof=id label description website license part_of latest_version latest_release score"`
	Order   string `form:"order" binding:"omitempty,oneof=asc desc"`
	Refresh bool   `form:"refresh"`
}

// GET /api/catalog/resources
func (h *ResourceHandler) List(c *gin.Context) {
	var q listResourcesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, errors.NewBadRequest("column, sort and order must name table columns ("+sortableColumns+")"))
		return
	}

	kind, err := catalog.ParseKind(q.Kind)
	if err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	rs, err := h.svc.List(requestContext(c), kind, q.Refresh)
	if rs == nil {
		response.Error(c, err)
		return
	}

	rows := rs.Rows
	if q.Filter != "" {
		column := q.Column
		if column == "" {
			column = "label"
		}
		rows = catalog.Filter(rows, column, q.Filter)
	}
	if q.Sort != "" {
		catalog.Sort(rows, q.Sort, q.Order == "desc")
	}

	meta := &response.Meta{
		Total:     len(rows),
		Dropped:   rs.Dropped,
		Stale:     rs.Stale,
		FetchedAt: &rs.FetchedAt,
	}
	if rs.Stale && err != nil {
		meta.Warning = errors.FromError(err).Message
	}

	response.SuccessWithMeta(c, http.StatusOK, rows, meta)
}

type refreshRequest struct {
	Kind string `json:"kind"`
}

// POST /api/catalog/refresh
func (h *ResourceHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if c.Request != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errors.NewBadRequest("request body must be JSON with an optional kind field"))
			return
		}
	}

	kind, err := catalog.ParseKind(req.Kind)
	if err != nil {
		response.Error(c, errors.NewBadRequest(err.Error()))
		return
	}

	rs, err := h.svc.Refresh(requestContext(c), kind)
	if err != nil && rs == nil {
		response.Error(c, err)
		return
	}

	meta := &response.Meta{
		Total:     len(rs.Rows),
		Dropped:   rs.Dropped,
		Stale:     rs.Stale,
		FetchedAt: &rs.FetchedAt,
	}
	if rs.Stale && err != nil {
		meta.Warning = errors.FromError(err).Message
	}

	response.SuccessWithMeta(c, http.StatusOK, rs.Rows, meta)
}
