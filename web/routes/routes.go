package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	catalogquery "github.com/tair/storefront/internal/catalog/usecase/query"
	"github.com/tair/storefront/internal/checkout"
	checkoutdomain "github.com/tair/storefront/internal/checkout/domain"
	favoritesquery "github.com/tair/storefront/internal/favorites/usecase/query"
	"github.com/tair/storefront/internal/session"
	sessiondomain "github.com/tair/storefront/internal/session/domain"
	sessioncommand "github.com/tair/storefront/internal/session/usecase/command"
	"github.com/tair/storefront/web/health"
	"github.com/tair/storefront/web/middleware"
)

// Deps holds everything the page routes need
type Deps struct {
	Manager       *session.Manager
	Machine       *checkout.Machine
	SignIn        *sessioncommand.SignInHandler
	SignOut       *sessioncommand.SignOutHandler
	ListProducts  *catalogquery.ListProductsHandler
	ListFavorites *favoritesquery.ListFavoritesHandler
	Health        *health.HealthChecker
}

// GuardedRoute declares a protected page and the roles it requires
type GuardedRoute struct {
	Path          string
	Page          string
	RequiredRoles []string
}

// guardedRoutes are the static protected pages. Checkout pages are guarded
// too, but routed through the state machine rather than this table.
var guardedRoutes = []GuardedRoute{
	{Path: "/account", Page: "account"},
	{Path: "/account/favorites", Page: "favorites"},
	{Path: "/admin/products", Page: "admin-products", RequiredRoles: []string{sessiondomain.RoleAdmin}},
}

// SetupRoutes configures all page routes
func SetupRoutes(app *fiber.App, deps Deps) {
	// Health probes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(deps.Health.QuickCheck())
	})
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := deps.Health.CheckAll(ctx)
		statusCode := fiber.StatusOK
		if status.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}
		return c.Status(statusCode).JSON(status)
	})

	// Home. Guard redirects land here with an explanation in the query
	// string, which the page surfaces to the visitor.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"page":    "home",
			"message": c.Query("message"),
			"session": deps.Manager.Snapshot(),
		})
	})

	// Sign-in page and form submission
	app.Get(middleware.SignInPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"page":    "signin",
			"message": c.Query("message"),
		})
	})

	app.Post(middleware.SignInPath, func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		response, err := deps.SignIn.Handle(c.UserContext(), sessioncommand.SignInCommand{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(response)
	})

	app.Post("/auth/signout", func(c *fiber.Ctx) error {
		if err := deps.SignOut.Handle(c.UserContext(), sessioncommand.SignOutCommand{}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Redirect("/", fiber.StatusFound)
	})

	// Public catalog
	app.Get("/shop/products", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit")
		offset := c.QueryInt("offset")
		search := c.Query("search")

		products, err := deps.ListProducts.Handle(catalogquery.ListProductsQuery{
			Limit:  limit,
			Offset: offset,
			Search: search,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"page":     "products",
			"search":   search,
			"products": products,
		})
	})

	// Static guarded pages
	for _, route := range guardedRoutes {
		route := route
		app.Get(route.Path,
			middleware.SessionGuard(deps.Manager, route.RequiredRoles...),
			func(c *fiber.Ctx) error {
				payload := fiber.Map{
					"page":     route.Page,
					"username": c.Locals("username"),
				}
				if route.Page == "favorites" && deps.ListFavorites != nil {
					payload["favorites"] = deps.ListFavorites.Handle(favoritesquery.ListFavoritesQuery{})
				}
				return c.JSON(payload)
			})
	}

	// Checkout root: the machine decides where to go
	app.Get("/checkout",
		middleware.SessionGuard(deps.Manager),
		func(c *fiber.Ctx) error {
			return applyDecision(c, deps.Machine.Enter(), "")
		})

	// Checkout steps: each render is re-approved by the machine, so a typed
	// URL cannot skip ahead
	app.Get("/checkout/:step",
		middleware.SessionGuard(deps.Manager),
		func(c *fiber.Ctx) error {
			step, ok := checkoutdomain.ParseStep(c.Params("step"))
			if !ok {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown checkout step"})
			}
			return applyDecision(c, deps.Machine.Resolve(step), step)
		})
}

// applyDecision turns a machine decision into a response
func applyDecision(c *fiber.Ctx, decision checkoutdomain.Decision, step checkoutdomain.Step) error {
	switch decision.Kind {
	case checkoutdomain.Redirect:
		return c.Redirect(decision.Target, fiber.StatusFound)
	case checkoutdomain.Wait:
		c.Set("Retry-After", "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"page":    "loading",
			"message": "Loading your cart",
		})
	default:
		return c.JSON(fiber.Map{
			"page": "checkout",
			"step": step,
		})
	}
}

// Routes returns the guarded page table, used by the overview endpoint
func Routes() []GuardedRoute {
	return guardedRoutes
}
