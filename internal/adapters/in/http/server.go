// Package http exposes the dispatch API over echo. Handlers translate
// between JSON payloads and application commands and queries.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	confirmOrderHandler    commands.ConfirmOrderCommandHandler
	confirmDeliveryHandler *commands.ConfirmDeliveryCommandHandler
	createCourierHandler   commands.CreateCourierCommandHandler

	// Query handlers
	getAllCouriersHandler       queries.GetAllCouriersQueryHandler
	getCourierByPhoneHandler    queries.GetCourierByPhoneQueryHandler
	getUncompletedOrdersHandler queries.GetUncompletedOrdersQueryHandler
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	confirmOrderHandler commands.ConfirmOrderCommandHandler,
	confirmDeliveryHandler *commands.ConfirmDeliveryCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	getAllCouriersHandler queries.GetAllCouriersQueryHandler,
	getCourierByPhoneHandler queries.GetCourierByPhoneQueryHandler,
	getUncompletedOrdersHandler queries.GetUncompletedOrdersQueryHandler,
) *Server {
	return &Server{
		confirmOrderHandler:         confirmOrderHandler,
		confirmDeliveryHandler:      confirmDeliveryHandler,
		createCourierHandler:        createCourierHandler,
		getAllCouriersHandler:       getAllCouriersHandler,
		getCourierByPhoneHandler:    getCourierByPhoneHandler,
		getUncompletedOrdersHandler: getUncompletedOrdersHandler,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders/confirmed", s.ConfirmOrder)
	api.GET("/orders/uncompleted", s.GetUncompletedOrders)
	api.POST("/deliveries/confirmed", s.ConfirmDelivery)
	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCouriers)
	api.GET("/couriers/by-phone", s.GetCourierByPhone)
	e.GET("/health", s.Health)
}

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type confirmOrderRequest struct {
	OrderID     string    `json:"orderId"`
	CustomerRef string    `json:"customerRef"`
	Address     string    `json:"address"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

type confirmOrderResponse struct {
	OrderID string `json:"orderId"`
}

type confirmDeliveryRequest struct {
	CourierID string `json:"courierId"`
	OrderID   string `json:"orderId"`
	Code      int    `json:"code"`
}

type createCourierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type courierResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Status         string  `json:"status"`
	CurrentBatchID *int64  `json:"currentBatchId,omitempty"`
	DistanceKm     float64 `json:"distanceKm"`
}

type orderResponse struct {
	ID      string  `json:"id"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Zone    string  `json:"zone"`
	Status  string  `json:"status"`
	BatchID *int64  `json:"batchId,omitempty"`
}

// ConfirmOrder handles POST /api/v1/orders/confirmed - accepts a confirmed
// order into the dispatch pipeline.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	var req confirmOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	location, err := kernel.NewGeoPoint(req.Lat, req.Lon)
	if err != nil {
		return badRequest(ctx, "Invalid order location: "+err.Error())
	}

	cmd, err := commands.NewConfirmOrderCommand(orderID, req.CustomerRef, req.Address, location, req.ConfirmedAt)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if handleErr := s.confirmOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil &&
		!errors.Is(handleErr, services.ErrNoCourierIdle) {
		return failure(ctx, handleErr, "Failed to confirm order")
	}

	return ctx.JSON(http.StatusAccepted, confirmOrderResponse{OrderID: cmd.OrderID().String()})
}

// ConfirmDelivery handles POST /api/v1/deliveries/confirmed - verifies the
// handoff code and advances the order's batch.
func (s *Server) ConfirmDelivery(ctx echo.Context) error {
	var req confirmDeliveryRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewConfirmDeliveryCommand(courierID, orderID, req.Code)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if handleErr := s.confirmDeliveryHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil &&
		!errors.Is(handleErr, services.ErrNoCourierIdle) {
		return failure(ctx, handleErr, "Failed to confirm delivery")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CreateCourier handles POST /api/v1/couriers - registers a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var req createCourierRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateCourierCommand(req.Name, req.Phone)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if handleErr := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return failure(ctx, handleErr, "Failed to create courier")
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetCouriers handles GET /api/v1/couriers - retrieves all couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	query := queries.NewGetAllCouriersQuery()

	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return failure(ctx, err, "Failed to retrieve couriers")
	}

	response := make([]courierResponse, len(couriers))
	for i, c := range couriers {
		response[i] = toCourierResponse(c)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCourierByPhone handles GET /api/v1/couriers/by-phone - looks up a
// courier by a phone number or its suffix.
func (s *Server) GetCourierByPhone(ctx echo.Context) error {
	query, err := queries.NewGetCourierByPhoneQuery(ctx.QueryParam("phone"))
	if err != nil {
		return badRequest(ctx, "Invalid phone: "+err.Error())
	}

	found, err := s.getCourierByPhoneHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return failure(ctx, err, "Failed to look up courier")
	}

	return ctx.JSON(http.StatusOK, toCourierResponse(found))
}

// GetUncompletedOrders handles GET /api/v1/orders/uncompleted - retrieves
// all orders still moving through dispatch.
func (s *Server) GetUncompletedOrders(ctx echo.Context) error {
	query := queries.NewGetUncompletedOrdersQuery()

	orders, err := s.getUncompletedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return failure(ctx, err, "Failed to retrieve orders")
	}

	response := make([]orderResponse, len(orders))
	for i, o := range orders {
		response[i] = orderResponse{
			ID:      o.ID.String(),
			Address: o.Address,
			Lat:     o.Lat,
			Lon:     o.Lon,
			Zone:    o.Zone,
			Status:  o.Status,
			BatchID: o.BatchID,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func toCourierResponse(c queries.GetAllCouriersQueryResponse) courierResponse {
	return courierResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Phone:          c.Phone,
		Status:         c.Status,
		CurrentBatchID: c.CurrentBatchID,
		DistanceKm:     c.DistanceKm,
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// failure maps an application error to an HTTP status. Unknown errors stay
// opaque and report the fallback message.
func failure(ctx echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, commands.ErrVerificationCodeMismatch),
		errors.Is(err, commands.ErrOrderNotOutForDelivery):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, ports.ErrGraphUnavailable), errors.Is(err, ports.ErrNoRouteFound):
		return ctx.JSON(http.StatusBadGateway, Error{
			Code:    http.StatusBadGateway,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: fallback,
		})
	}
}
