package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/user-geo-service/internal/geo"
	"github.com/i474232898/user-geo-service/internal/scheduler"
	"github.com/i474232898/user-geo-service/internal/user"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. probe may be nil
// when no connectivity probe is running.
func RegisterRoutes(app *fiber.App, svc *user.Service, probe *scheduler.Probe) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "ok",
			"service": "user-geo-service",
		}
		if probe != nil {
			body["upstream"] = probe.Status()
		}
		return c.JSON(body)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	users := app.Group("/users")

	users.Post("/", func(c *fiber.Ctx) error {
		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := svc.Create(c.UserContext(), user.CreateInput{
			Name:    req.Name,
			ZipCode: req.ZipCode,
			Country: req.Country,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	users.Get("/", func(c *fiber.Ctx) error {
		all, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(all)
	})

	users.Get("/:id", func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(rec)
	})

	users.Put("/:id", func(c *fiber.Ctx) error {
		var patch user.Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		rec, err := svc.Update(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	})

	users.Delete("/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"deleted": id})
	})
}

// createRequest holds the POST /users body. Presence checks only; the
// resolver decides whether the zip itself is meaningful.
type createRequest struct {
	Name    string `json:"name" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country"`
}

// ErrorHandler translates service errors into the JSON error envelope.
// Every error is caught here; none propagate as unhandled faults.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	if errors.Is(err, user.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errors.Is(err, user.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	var resErr *geo.ResolutionError
	if errors.As(err, &resErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "geolocation lookup failed",
			"details": resErr.Err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal server error",
		"details": err.Error(),
	})
}
