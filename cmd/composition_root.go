package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/roadgraph"
	"dispatch/internal/adapters/out/whatsapp"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	scheduler *services.BatchScheduler
	board     *services.DispatchBoard
	policy    services.SelectionPolicy
	planner   ports.RoutePlanner
	notifier  ports.Notifier
	depot     kernel.GeoPoint
	logger    *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	depot, err := parseDepot(config)
	if err != nil {
		return nil, err
	}

	notifier, err := whatsapp.NewClient(config.NotifyGatewayURL)
	if err != nil {
		return nil, fmt.Errorf("notify gateway: %w", err)
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		scheduler:  services.NewBatchScheduler(),
		board:      services.NewDispatchBoard(),
		policy:     services.NewRandomSelectionPolicy(),
		planner:    roadgraph.NewPlanner(config.RoadGraphPath),
		notifier:   notifier,
		depot:      depot,
		logger:     logger,
	}, nil
}

func parseDepot(config Config) (kernel.GeoPoint, error) {
	lat, err := strconv.ParseFloat(config.DepotLat, 64)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("DEPOT_LAT: %w", err)
	}

	lon, err := strconv.ParseFloat(config.DepotLon, 64)
	if err != nil {
		return kernel.GeoPoint{}, fmt.Errorf("DEPOT_LON: %w", err)
	}

	return kernel.NewGeoPoint(lat, lon)
}

func (c *CompositionRoot) CreateAllocateBatchCommandHandler() *commands.AllocateBatchCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAllocateBatchCommandHandler(f, c.policy, c.board, c.planner, c.notifier, c.depot, c.logger)
}

func (c *CompositionRoot) CreateFormBatchCommandHandler() *commands.FormBatchCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewFormBatchCommandHandler(f, c.scheduler, c.board, c.CreateAllocateBatchCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmOrderCommandHandler(f, c.scheduler, c.CreateFormBatchCommandHandler(), c.depot, c.logger)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() *commands.ConfirmDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmDeliveryCommandHandler(
		f, c.board, c.planner, c.notifier, c.CreateAllocateBatchCommandHandler(), c.depot, c.logger,
	)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateSweepZonesCommandHandler() commands.SweepZonesCommandHandler {
	return commands.NewSweepZonesCommandHandler(c.scheduler, c.CreateFormBatchCommandHandler(), c.logger)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCourierByPhoneQueryHandler() queries.GetCourierByPhoneQueryHandler {
	return queries.NewGetCourierByPhoneQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateSweepZonesCommandHandler(),
		c.CreateAllocateBatchCommandHandler(),
		c.board,
		c.logger,
	)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
