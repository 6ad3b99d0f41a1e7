package handlers

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	jsoniter "github.com/json-iterator/go"

	applog "litshop/internal/log"
)

const apiPrefix = "/api/"

// AppConfig tunes the HTTP surface. Zero rate limits disable the limiter.
type AppConfig struct {
	TemplatesDir string
	// ReloadTemplates re-parses templates on each render (development).
	ReloadTemplates bool
	// AccessLog receives one line per request; nil means stdout.
	AccessLog io.Writer

	RateLimit      int // requests per minute per IP, all routes
	PlaceRateLimit int // order placements per minute per IP
}

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(cfg AppConfig) *fiber.App {
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(cfg.ReloadTemplates)

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	app := fiber.New(fiber.Config{
		Views:        engine,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	out := cfg.AccessLog
	if out == nil {
		out = os.Stdout
	}
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: out,
	}))
	app.Use(helmet.New())
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/healthz")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return fiber.ErrTooManyRequests
			},
		}))
	}
	return app
}

// Register mounts every route. It must run after NewApp and before listening.
func Register(app *fiber.App, d *Deps, cfg AppConfig) {
	api := app.Group("/api/v1")

	place := []fiber.Handler{}
	if cfg.PlaceRateLimit > 0 {
		place = append(place, limiter.New(limiter.Config{
			Max:        cfg.PlaceRateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|order"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.order.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(apiError{Error: "rate_limited", Message: "rate limit exceeded, retry soon"})
			},
		}))
	}
	place = append(place, d.OrderHandler.Place)
	api.Post("/orders", place...)
	api.Get("/orders", d.OrderHandler.List)
	api.Get("/orders/:id", d.OrderHandler.View)
	api.Get("/statistics", d.StatisticsHandler.API)
	api.Get("/books", d.CatalogHandler.Books)
	api.Get("/books/:id/availability", d.InventoryHandler.Check)
	api.Get("/categories", d.CatalogHandler.Categories)

	app.Get("/statistics", d.StatisticsHandler.Page)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if d.DB != nil {
			if err := d.DB.PingContext(c.UserContext()); err != nil {
				applog.Error(c, "health.db.fail", err, nil)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
			}
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
