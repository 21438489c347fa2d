package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"privacy-guard/internal/config"
	"privacy-guard/internal/database"
	"privacy-guard/internal/handlers"
	"privacy-guard/internal/middleware"
	"privacy-guard/internal/models"
	"privacy-guard/internal/services/alerts"
	"privacy-guard/internal/services/health"
	"privacy-guard/internal/services/installer"
	ws "privacy-guard/internal/services/websocket"
)

func main() {
	appLog := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(appLog)

	// Load .env file if exists
	_ = godotenv.Load()

	configPath := os.Getenv("PRIVACY_GUARD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		appLog.Error("load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLog.Error("connect database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, models.Operational()...); err != nil {
		appLog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	createDefaultAdmin(db, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := &health.Collector{DB: db}
	if cfg.Database.Driver == "sqlite" {
		collector.DataDir = filepath.Dir(cfg.Database.Path)
	}
	hub := ws.InitHub(ctx, collector, 5*time.Second)

	inst := installer.New(db,
		installer.WithNotifier(hub),
		installer.WithLogger(appLog),
	)

	alertService := alerts.New(db, alerts.WithLogger(appLog))
	if cfg.Alerts.Enabled {
		if err := alertService.Start(cfg.Alerts.Schedule); err != nil {
			appLog.Error("start alert scheduler", "schedule", cfg.Alerts.Schedule, "error", err)
			os.Exit(1)
		}
		defer func() { <-alertService.Stop().Done() }()
	}

	engine := html.New(cfg.Server.Templates, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/base",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: false,
	}))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	h := &handlers.Handlers{
		DB:        db,
		Installer: inst,
		Alerts:    alertService,
		Health:    collector,
	}
	handlers.RegisterRoutes(app, h)
	setupPages(app, inst)
	app.Get("/ws/events", websocket.New(ws.HandleWebSocket))

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("privacy guard starting", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("listen", "addr", addr, "error", err)
	}
}

func setupPages(app *fiber.App, inst *installer.Service) {
	app.Get("/", func(c *fiber.Ctx) error {
		if !inst.CheckStatus(c.UserContext()).IsInstalled {
			return c.Redirect("/install")
		}
		return c.Redirect("/login")
	})

	app.Get("/login", func(c *fiber.Ctx) error {
		if _, err := middleware.ParseToken(c.Cookies("token")); err == nil {
			return c.Redirect("/dashboard")
		}
		return c.Render("pages/login", fiber.Map{
			"Title": "Login - Privacy Guard",
		})
	})

	app.Get("/install", func(c *fiber.Ctx) error {
		return c.Render("pages/install", fiber.Map{
			"Title":  "Installation - Privacy Guard",
			"Status": inst.CheckStatus(c.UserContext()),
		})
	})

	app.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.Render("pages/dashboard", fiber.Map{
			"Title":  "Dashboard - Privacy Guard",
			"Active": "dashboard",
		})
	})
}

// createDefaultAdmin makes sure the configured admin can log in. An existing
// account with the same email is left alone.
func createDefaultAdmin(db *gorm.DB, cfg *config.Config) {
	email := strings.ToLower(strings.TrimSpace(cfg.Admin.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		slog.Error("look up default admin", "email", email, "error", err)
		return
	}
	if count > 0 {
		return
	}

	admin := models.User{
		Email:     email,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
		Role:      models.RoleAdmin,
	}
	if err := admin.SetPassword(cfg.Admin.Password); err != nil {
		slog.Error("hash default admin password", "error", err)
		return
	}

	if err := db.Create(&admin).Error; err != nil {
		slog.Error("create default admin", "email", email, "error", err)
		return
	}
	slog.Info("default admin user created", "email", email)
}
