package main

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meikuraledutech/workflow"
	"github.com/meikuraledutech/workflow/assembly"
	"github.com/meikuraledutech/workflow/graph"
)

type handler struct {
	store   workflow.Store
	runner  *assembly.Service
	metrics *metrics
	logger  *slog.Logger
}

// newApp wires the routes on top of store.
func newApp(cfg Config, store workflow.Store, logger *slog.Logger, reg *prometheus.Registry) *fiber.App {
	h := &handler{
		store:   store,
		runner:  assembly.New(store, assembly.WithLogger(logger)),
		metrics: newMetrics(reg),
		logger:  logger,
	}

	app := fiber.New()
	app.Use(recoverer.New())

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Workflows ─────────────────────────────────────────────────────
	app.Post("/workflows", h.createWorkflow)
	app.Get("/workflows", h.listWorkflows)
	app.Get("/workflows/:id", h.getWorkflow)
	app.Put("/workflows/:id", h.updateWorkflow)
	app.Delete("/workflows/:id", h.deleteWorkflow)

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/workflows/:id/nodes", h.addNode)
	app.Get("/workflows/:id/nodes", h.listNodes)
	app.Get("/nodes/:id", h.getNode)
	app.Put("/nodes/:id", h.updateNode)
	app.Delete("/nodes/:id", h.deleteNode)

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/edges", h.addEdge)
	app.Get("/workflows/:id/edges", h.listEdges)
	app.Get("/edges/:id", h.getEdge)
	app.Put("/edges/:id", h.updateEdge)
	app.Delete("/edges/:id", h.deleteEdge)

	// ── Engine ────────────────────────────────────────────────────────
	app.Post("/workflows/:id/validate", h.validateWorkflow)
	app.Post("/workflows/:id/execute", h.executeWorkflow)
	app.Get("/workflows/:id/draw", cache.New(cache.Config{
		Expiration: cfg.DrawCacheTTL,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.Path() + "?format=" + c.Query("format")
		},
	}), h.drawWorkflow)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return app
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, workflow.ErrUnknownRef):
		return fiber.StatusBadRequest
	case errors.Is(err, workflow.ErrWorkflowNotFound),
		errors.Is(err, workflow.ErrNodeNotFound),
		errors.Is(err, workflow.ErrEdgeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workflow.ErrDuplicateEdge):
		return fiber.StatusConflict
	case errors.Is(err, graph.ErrNodeCreation),
		errors.Is(err, graph.ErrEdgeCreation),
		errors.Is(err, graph.ErrCycle):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func (h *handler) fail(c fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		h.logger.ErrorContext(c.Context(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// paramID parses the :id route parameter.
func paramID(c fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("id must be a positive integer")
	}
	return id, nil
}
