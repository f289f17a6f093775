package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/georgemunganga/orderdesk/internal/config"
	"github.com/georgemunganga/orderdesk/internal/modules/auth"
	"github.com/georgemunganga/orderdesk/internal/modules/catalog"
	"github.com/georgemunganga/orderdesk/internal/modules/order"
	"github.com/georgemunganga/orderdesk/internal/modules/upload"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
	"github.com/georgemunganga/orderdesk/internal/platform/httpx"
)

const shutdownTimeout = 10 * time.Second

func serve(c *cli.Context) error {
	cfg, store, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	router, err := newRouter(c.Context, cfg, store)
	if err != nil {
		return err
	}

	killSignalChan := getKillSignalChan()
	srv := startServer(":"+cfg.Port, router)

	waitForKillSignalChan(killSignalChan)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newRouter wires every module onto one chi router and makes sure the admin account exists.
func newRouter(ctx context.Context, cfg *config.Config, store database.Store) (http.Handler, error) {
	userService := user.NewService(user.NewSQLRepository(store))
	if err := ensureAdmin(ctx, cfg, userService); err != nil {
		return nil, err
	}
	authService := auth.NewService(userService, cfg.JWTSecret, cfg.JWTExpiresIn)
	guards := auth.NewGate(authService, userService).Guards()

	catalogService := catalog.NewService(catalog.NewSQLRepository(store))
	orderService := order.NewService(order.NewSQLRepository(store), catalogService, userService)

	images, err := upload.NewDiskStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httpx.RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(cfg)))

	router.Route("/api/auth", func(r chi.Router) {
		auth.NewHandler(authService, userService).RegisterRoutes(r, guards)
		user.NewHandler(userService).RegisterRoutes(r, guards)
	})
	router.Route("/api/products", func(r chi.Router) {
		catalog.NewHandler(catalogService).RegisterRoutes(r, guards)
	})
	router.Route("/api/orders", func(r chi.Router) {
		order.NewHandler(orderService).RegisterRoutes(r, guards)
	})
	router.Route("/api/upload", func(r chi.Router) {
		upload.NewHandler(images, cfg.BackendURL, cfg.UploadURLBase).RegisterRoutes(r, guards)
	})

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})

	return router, nil
}

var localhostOrigin = regexp.MustCompile(`^http://localhost:\d+$`)

func corsOptions(cfg *config.Config) cors.Options {
	frontend := strings.TrimRight(cfg.FrontendURL, "/")
	production := cfg.IsProduction()
	return cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			switch {
			case frontend != "" && origin == frontend:
				return true
			case localhostOrigin.MatchString(origin):
				return true
			default:
				return !production
			}
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func startServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.WithField("addr", addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()
	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignalChan(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("Got SIGINT...")
	case syscall.SIGTERM:
		log.Info("Got SIGTERM...")
	}
}
