package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/export"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/SscSPs/phone_store_caisse/internal/platform/config"
	"github.com/SscSPs/phone_store_caisse/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

const (
	headerTotalCount      = "X-Total-Count"
	headerExportTruncated = "X-Export-Truncated"
)

// operationHandler serves the ledger listing and export.
type operationHandler struct {
	operationService portssvc.OperationSvcFacade
	caisseService    portssvc.CaisseReaderSvc
	defaultPageSize  int
	maxPageSize      int
}

func registerOperationRoutes(rg *gin.RouterGroup, os portssvc.OperationSvcFacade, cs portssvc.CaisseReaderSvc, cfg *config.Config) {
	h := &operationHandler{
		operationService: os,
		caisseService:    cs,
		defaultPageSize:  cfg.DefaultPageSize,
		maxPageSize:      cfg.MaxPageSize,
	}

	ops := rg.Group("/caisse-operations")
	{
		ops.GET("/", h.listOperations)
		ops.GET("/export/", h.exportOperations)
	}
}

// listOperations godoc
// @Summary List ledger operations
// @Description Lists operations newest first, filtered and paginated
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)"
// @Param caisse query int false "Register ID"
// @Param operation_type query string false "DEPOSIT, WITHDRAWAL, SALE, PURCHASE_PAYMENT or ADJUSTMENT"
// @Param start_date query string false "Inclusive lower bound (YYYY-MM-DD or RFC 3339)"
// @Param end_date query string false "Upper bound: a bare YYYY-MM-DD is exclusive, an RFC 3339 timestamp inclusive"
// @Param search query string false "Case-insensitive substring of the performer's username or the description"
// @Success 200 {object} dto.PaginatedOperationsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Invalid page"
// @Failure 500 {object} ErrorResponse
// @Router /caisse-operations/ [get]
func (h *operationHandler) listOperations(c *gin.Context) {
	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	pageParams, err := pagination.Normalize(params.Page, params.PageSize, h.defaultPageSize, h.maxPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	page, err := h.operationService.ListOperations(c.Request.Context(), filter, pageParams.Page, pageParams.PageSize)
	if err != nil {
		writeServiceError(c, err, "Failed to list operations")
		return
	}

	next, previous := pagination.Links(requestURL(c), page.Page, page.Count, page.PageSize)
	c.JSON(http.StatusOK, dto.PaginatedOperationsResponse{
		Count:    page.Count,
		Next:     next,
		Previous: previous,
		Results:  dto.ToOperationResponses(page.Results),
	})
}

// exportOperations godoc
// @Summary Export ledger operations
// @Description Downloads every operation matching the filters as an XLSX workbook
// @Tags operations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param caisse query int false "Register ID"
// @Param operation_type query string false "Operation type"
// @Param start_date query string false "Inclusive lower bound"
// @Param end_date query string false "Upper bound: a bare YYYY-MM-DD is exclusive, an RFC 3339 timestamp inclusive"
// @Param search query string false "Case-insensitive substring of the performer's username or the description"
// @Success 200 {file} file
// @Header 200 {integer} X-Total-Count "Operations matching the filters"
// @Header 200 {string} X-Export-Truncated "true when the workbook stops at the export cap"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /caisse-operations/export/ [get]
func (h *operationHandler) exportOperations(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ops, total, err := h.operationService.ExportOperations(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err, "Failed to export operations")
		return
	}
	caisses, err := h.caisseService.ListCaisses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to export operations")
		return
	}
	names := make(map[int64]string, len(caisses))
	for _, cr := range caisses {
		names[cr.CaisseID] = cr.Name
	}

	var buf bytes.Buffer
	if err := export.WriteOperationsWorkbook(&buf, ops, names); err != nil {
		logger.Error("Failed to render workbook", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export operations"})
		return
	}

	filename := fmt.Sprintf("caisse-operations-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header(headerTotalCount, strconv.FormatInt(total, 10))
	if total > int64(len(ops)) {
		c.Header(headerExportTruncated, "true")
	}
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// requestURL reconstructs the absolute URL of the current request.
func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
		u.Scheme = proto
	}
	u.Host = c.Request.Host
	return &u
}
