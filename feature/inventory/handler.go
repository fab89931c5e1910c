package inventory

import (
	"errors"

	"netbox-reconciler/core/journal"
	"netbox-reconciler/core/logger"
	"netbox-reconciler/core/reconcile"

	"github.com/creasty/defaults"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReconcileRequest is the body of POST /reconcile/:kind.
type ReconcileRequest struct {
	Data      map[string]any `json:"data"`
	State     string         `json:"state" default:"present"`
	CheckMode bool           `json:"check_mode"`
}

// Handler handles HTTP requests for inventory reconciliation.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/kinds", h.HandleListKinds)
	app.Post("/reconcile/:kind", h.HandleReconcile)

	runs := app.Group("/runs")
	runs.Get("/", h.HandleListRuns)
	runs.Get("/:id", h.HandleGetRun)
}

// HandleReconcile reconciles one object of the kind in the path.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var body ReconcileRequest
	if err := defaults.Set(&body); err != nil {
		return err
	}
	if err := c.BodyParser(&body); err != nil {
		l.Warn("Invalid reconcile request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	resp := h.service.Reconcile(c.UserContext(), reconcile.Request{
		Kind:   c.Params("kind"),
		Data:   body.Data,
		State:  body.State,
		DryRun: body.CheckMode,
	}, SourceHTTP)

	status := statusFor(resp.Result)
	if status >= fiber.StatusInternalServerError {
		l.Error("Reconciliation failed", zap.String("run_id", resp.RunID), zap.String("message", resp.Message))
	} else {
		l.Info("Reconciliation finished",
			zap.String("run_id", resp.RunID),
			zap.String("action", resp.Action),
			zap.Bool("changed", resp.Changed),
		)
	}
	return c.Status(status).JSON(resp)
}

// HandleListKinds returns the registered kinds.
func (h *Handler) HandleListKinds(c *fiber.Ctx) error {
	return c.JSON(h.service.Kinds())
}

// HandleListRuns returns recent runs, optionally filtered by ?kind= and ?key=.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	if !h.service.JournalEnabled() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "journal disabled"})
	}

	runs, err := h.service.Runs(c.UserContext(), journal.Filter{
		Kind:  c.Query("kind"),
		Key:   c.Query("key"),
		Limit: c.QueryInt("limit", 20),
	})
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandleGetRun returns one recorded run.
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.service.Run(c.UserContext(), c.Params("id"))
	if errors.Is(err, journal.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to get run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(run)
}

// statusFor maps a result to an HTTP status: request problems are 422,
// NetBox failures 502 and anything unexpected 500.
func statusFor(r reconcile.Result) int {
	if r.Error == nil {
		return fiber.StatusOK
	}
	switch r.Error.Code {
	case reconcile.CodeConfiguration, reconcile.CodeReferenceNotFound, reconcile.CodeAmbiguousReference:
		return fiber.StatusUnprocessableEntity
	case reconcile.CodeTransport:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
