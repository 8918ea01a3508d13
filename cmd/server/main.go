// Command server starts the movie-show booking HTTP API.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/movie-show-booking/internal/config"
	"github.com/iliyamo/movie-show-booking/internal/database"
	"github.com/iliyamo/movie-show-booking/internal/handler"
	"github.com/iliyamo/movie-show-booking/internal/queue"
	"github.com/iliyamo/movie-show-booking/internal/repository"
	"github.com/iliyamo/movie-show-booking/internal/reservation"
	"github.com/iliyamo/movie-show-booking/internal/router"
	"github.com/iliyamo/movie-show-booking/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded configuration from .env")
	}

	cfg := config.Load()
	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logrus.WithError(err).Fatal("schema migration failed")
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable; response cache and rate limiting disabled")
	}

	// Background consumer appends booking events to logs/booking.log and
	// reconnects on broker failure.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			logrus.WithError(err).Warn("booking consumer stopped")
		}
	}()

	movies := repository.NewMovieRepo(db)
	shows := repository.NewShowRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	engine := reservation.NewEngine(shows, bookings)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		Cfg:     cfg,
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
		Browse:  handler.NewBrowseHandler(movies, shows, bookings),
		Booking: handler.NewBookingHandler(engine),
		Catalog: handler.NewCatalogHandler(movies, shows, engine),
		Redis:   rdb,
	})

	logrus.WithFields(logrus.Fields{
		"env":  cfg.Env,
		"port": cfg.Port,
	}).Info("starting movie-show booking server")
	if err := e.Start(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
