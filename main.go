package main

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"

	"github.com/toridoriv/fangirl-toolbox/config"
	"github.com/toridoriv/fangirl-toolbox/crawler"
	"github.com/toridoriv/fangirl-toolbox/db"
	handlers "github.com/toridoriv/fangirl-toolbox/handler"
	"github.com/toridoriv/fangirl-toolbox/utils"
	"github.com/toridoriv/fangirl-toolbox/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	database, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		panic("failed to connect database")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	if cfg.S3AccessKey != "" {
		if err := utils.InitS3(cfg); err != nil {
			log.Printf("S3 unavailable, cover uploads disabled: %v", err)
		}
	}

	e := echo.New()
	fanficHandler := &handlers.FanficHandler{DB: database}

	e.GET("/fanfics", fanficHandler.GetFanfics)
	e.GET("/latest-fanfics", fanficHandler.GetLatestFanfics)
	e.GET("/fanfics/:id", fanficHandler.GetFanfic)
	e.GET("/fanfics/:id/chapters", fanficHandler.GetFanficChapters)
	e.GET("/fanfics/:fanfic_id/chapters/:number", fanficHandler.GetChapterByNumber)
	e.GET("/fanfics/:id/localization-status", fanficHandler.GetLocalizationStatus)
	e.DELETE("/fanfics/:id", fanficHandler.DeleteFanfic)

	c := crawler.NewCrawler()
	w := worker.NewWorker(c, database, rdb)
	go w.Start(context.Background())

	e.POST("/scrape", func(c echo.Context) error {
		url := c.FormValue("url")
		if err := w.EnqueueFanfiction(url); err != nil {
			return c.String(http.StatusInternalServerError, "Failed to enqueue fanfiction")
		}
		return c.String(http.StatusOK, "Fanfiction queued for scraping")
	})

	e.POST("/fanfics/:id/localize", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid fanfiction id")
		}
		target := c.FormValue("target")
		if err := w.EnqueueLocalization(uint(id), target); err != nil {
			return c.String(http.StatusInternalServerError, "Failed to enqueue localization")
		}
		return c.String(http.StatusOK, "Localization queued")
	})

	e.POST("/fanfics/:id/cover", func(c echo.Context) error {
		file, err := c.FormFile("cover")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing cover file")
		}
		if _, err := utils.UploadCover(file, c.Param("id")); err != nil {
			return c.String(http.StatusInternalServerError, "Failed to upload cover")
		}
		return c.String(http.StatusOK, "Cover uploaded")
	})

	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
