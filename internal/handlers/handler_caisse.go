package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/phone_store_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/phone_store_caisse/internal/core/ports/services"
	"github.com/SscSPs/phone_store_caisse/internal/dto"
	"github.com/SscSPs/phone_store_caisse/internal/middleware"
	"github.com/gin-gonic/gin"
)

// caisseHandler handles HTTP requests related to cash registers.
type caisseHandler struct {
	caisseService    portssvc.CaisseSvcFacade
	reportingService portssvc.ReportingService
}

// newCaisseHandler creates a new caisseHandler.
func newCaisseHandler(cs portssvc.CaisseSvcFacade, rs portssvc.ReportingService) *caisseHandler {
	return &caisseHandler{
		caisseService:    cs,
		reportingService: rs,
	}
}

// registerCaisseRoutes registers routes related to cash registers.
func registerCaisseRoutes(rg *gin.RouterGroup, cs portssvc.CaisseSvcFacade, rs portssvc.ReportingService) {
	h := newCaisseHandler(cs, rs)

	caisses := rg.Group("/caisse")
	{
		caisses.GET("/", h.listCaisses)
		caisses.POST("/", h.createCaisse)
		caisses.GET("/:id/", h.getCaisse)
		caisses.GET("/:id/summary/", h.getSummary)
		caisses.POST("/:id/deposit/", h.deposit)
		caisses.POST("/:id/withdraw/", h.withdraw)
		caisses.POST("/:id/sale/", h.recordSale)
		caisses.POST("/:id/purchase-payment/", h.recordPurchasePayment)
		caisses.POST("/:id/adjust/", h.adjust)
	}
}

// listCaisses godoc
// @Summary List cash registers
// @Description Retrieves every register with its current balance
// @Tags caisse
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListCaissesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /caisse/ [get]
func (h *caisseHandler) listCaisses(c *gin.Context) {
	caisses, err := h.caisseService.ListCaisses(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, "Failed to list registers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCaissesResponse(caisses))
}

// createCaisse godoc
// @Summary Create a cash register
// @Description Opens a new register with a zero balance
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caisse body dto.CreateCaisseRequest true "Register details"
// @Success 201 {object} dto.CaisseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /caisse/ [post]
func (h *caisseHandler) createCaisse(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateCaisseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	caisse, err := h.caisseService.CreateCaisse(c.Request.Context(), req, actor)
	if err != nil {
		writeServiceError(c, err, "Failed to create register")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCaisseResponse(caisse))
}

// getCaisse godoc
// @Summary Get a cash register
// @Description Retrieves a register and its most recent operations
// @Tags caisse
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Success 200 {object} dto.CaisseDetailResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /caisse/{id}/ [get]
func (h *caisseHandler) getCaisse(c *gin.Context) {
	caisseID, ok := caisseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.caisseService.GetCaisse(c.Request.Context(), caisseID)
	if err != nil {
		writeServiceError(c, err, "Failed to get register")
		return
	}
	c.JSON(http.StatusOK, dto.ToCaisseDetailResponse(detail))
}

// getSummary godoc
// @Summary Summarise a register's ledger
// @Description Aggregates inflow and outflow per operation type, optionally within a date window
// @Tags caisse
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param start_date query string false "Inclusive lower bound (YYYY-MM-DD or RFC 3339)"
// @Param end_date query string false "Inclusive upper bound (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /caisse/{id}/summary/ [get]
func (h *caisseHandler) getSummary(c *gin.Context) {
	caisseID, ok := caisseIDParam(c)
	if !ok {
		return
	}

	var params dto.SummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	from, to, err := params.Window()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := h.reportingService.Summary(c.Request.Context(), caisseID, from, to)
	if err != nil {
		writeServiceError(c, err, "Failed to summarise register")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}

// deposit godoc
// @Summary Deposit cash
// @Description Adds a positive amount to the register balance
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param deposit body dto.MovementRequest true "Amount and optional description"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /caisse/{id}/deposit/ [post]
func (h *caisseHandler) deposit(c *gin.Context) {
	handleMutation(c, "deposit", func(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
		return h.caisseService.Deposit(ctx, caisseID, req, actor)
	})
}

// withdraw godoc
// @Summary Withdraw cash
// @Description Removes a positive amount from the register; rejected when it exceeds the balance
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param withdrawal body dto.MovementRequest true "Amount and optional description"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /caisse/{id}/withdraw/ [post]
func (h *caisseHandler) withdraw(c *gin.Context) {
	handleMutation(c, "withdraw", func(ctx context.Context, caisseID int64, req dto.MovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
		return h.caisseService.Withdraw(ctx, caisseID, req, actor)
	})
}

// recordSale godoc
// @Summary Record a sale
// @Description Adds the cash taken for a sale, linked to the sale reference
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param sale body dto.ReferencedMovementRequest true "Amount and sale reference"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /caisse/{id}/sale/ [post]
func (h *caisseHandler) recordSale(c *gin.Context) {
	handleMutation(c, "sale", func(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
		return h.caisseService.RecordSale(ctx, caisseID, req, actor)
	})
}

// recordPurchasePayment godoc
// @Summary Pay a supplier purchase
// @Description Removes the cash paid for a purchase, linked to the purchase reference
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param payment body dto.ReferencedMovementRequest true "Amount and purchase reference"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /caisse/{id}/purchase-payment/ [post]
func (h *caisseHandler) recordPurchasePayment(c *gin.Context) {
	handleMutation(c, "purchase_payment", func(ctx context.Context, caisseID int64, req dto.ReferencedMovementRequest, actor domain.Actor) (*domain.MutationResult, error) {
		return h.caisseService.RecordPurchasePayment(ctx, caisseID, req, actor)
	})
}

// adjust godoc
// @Summary Adjust a balance
// @Description Applies a signed correction after a till count. Admins only.
// @Tags caisse
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Register ID"
// @Param adjustment body dto.AdjustmentRequest true "Signed amount and reason"
// @Success 201 {object} dto.MutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /caisse/{id}/adjust/ [post]
func (h *caisseHandler) adjust(c *gin.Context) {
	handleMutation(c, "adjust", func(ctx context.Context, caisseID int64, req dto.AdjustmentRequest, actor domain.Actor) (*domain.MutationResult, error) {
		return h.caisseService.Adjust(ctx, caisseID, req, actor)
	})
}

// handleMutation binds the body, calls apply and writes the {caisse, operation} reply.
func handleMutation[Req any](
	c *gin.Context,
	kind string,
	apply func(ctx context.Context, caisseID int64, req Req, actor domain.Actor) (*domain.MutationResult, error),
) {
	logger := middleware.GetLoggerFromContext(c)

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	caisseID, ok := caisseIDParam(c)
	if !ok {
		return
	}

	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid mutation body", slog.String("kind", kind), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	result, err := apply(c.Request.Context(), caisseID, req, actor)
	if err != nil {
		writeServiceError(c, err, "Failed to record "+kind)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMutationResponse(result))
}
