package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/toridoriv/fangirl-toolbox/db"
)

type FanficHandler struct {
	DB *gorm.DB
}

type ChapterResponse struct {
	ID                 uint      `json:"id"`
	Number             int       `json:"number"`
	UpdatedAt          time.Time `json:"updated_at"`
	Title              *string   `json:"title"`
	LocalizationStatus string    `json:"localization_status"`
}

type FanficResponse struct {
	ID           uint      `json:"id"`
	FicID        string    `json:"fic_id"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"author_name"`
	Fandom       string    `json:"fandom"`
	Source       string    `json:"source"`
	LanguageCode string    `json:"language_code"`
	Relationship string    `json:"relationship"`
	Summary      *string   `json:"summary"`
	PublishedAt  time.Time `json:"published_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (h *FanficHandler) GetFanfic(c echo.Context) error {
	id := c.Param("id")

	var response FanficResponse
	var record db.Fanfic
	if err := h.DB.Table("fanfics").
		Select("id, fic_id, title, author_name, fandom, source, language_code, relationship, summary, published_at, updated_at").
		Where("id = ?", id).First(&record).
		Scan(&response).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Fanfiction not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, response)
}

func (h *FanficHandler) GetFanfics(c echo.Context) error {
	var responses []struct {
		db.Fanfic
		TotalChaptersCount int `json:"total_chapters_count"`
	}

	chapterCountSubquery := h.DB.Table("chapters").
		Select("COUNT(id) as total_chapters_count, fanfic_id").
		Group("fanfic_id")

	if err := h.DB.Table("fanfics").
		Select("fanfics.*, cc.total_chapters_count").
		Joins("LEFT JOIN (?) as cc ON cc.fanfic_id = fanfics.id", chapterCountSubquery).
		Where("fanfics.deleted_at IS NULL").
		Order("fanfics.updated_at DESC").
		Scan(&responses).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, responses)
}

func (h *FanficHandler) GetLatestFanfics(c echo.Context) error {
	var fics []db.Fanfic
	h.DB.Order("created_at DESC").Find(&fics)
	return c.JSON(http.StatusOK, fics)
}

func (h *FanficHandler) GetFanficChapters(c echo.Context) error {
	id := c.Param("id")

	var page, pageSize int = 1, 20
	var err error

	if qp := c.QueryParam("page"); qp != "" {
		page, err = strconv.Atoi(qp)
		if err != nil || page < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid page number")
		}
	}
	if qp := c.QueryParam("pageSize"); qp != "" {
		pageSize, err = strconv.Atoi(qp)
		if err != nil || pageSize < 1 || pageSize > 100 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid page size")
		}
	}

	offset := (page - 1) * pageSize

	var chapterResponses []ChapterResponse
	var totalChapters int64

	if err := h.DB.Model(&db.Chapter{}).Where("fanfic_id = ?", id).Count(&totalChapters).Error; err != nil {
		return err
	}

	if err := h.DB.Table("chapters").
		Select("id, number, updated_at, title, localization_status").
		Where("fanfic_id = ?", id).
		Order("number ASC").
		Limit(pageSize).
		Offset(offset).
		Scan(&chapterResponses).Error; err != nil {
		return err
	}

	response := map[string]interface{}{
		"chapters":      chapterResponses,
		"totalChapters": totalChapters,
		"currentPage":   page,
		"pageSize":      pageSize,
		"totalPages":    int(math.Ceil(float64(totalChapters) / float64(pageSize))),
	}

	return c.JSON(http.StatusOK, response)
}

func (h *FanficHandler) GetChapterByNumber(c echo.Context) error {
	fanficID := c.Param("fanfic_id")
	number := c.Param("number")

	var chapter db.Chapter
	if err := h.DB.
		Preload("Paragraphs", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Paragraphs.Translations").
		Where("fanfic_id = ? AND number = ?", fanficID, number).
		First(&chapter).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Chapter not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, chapter)
}

func (h *FanficHandler) GetLocalizationStatus(c echo.Context) error {
	id := c.Param("id")
	var totalChapters, localizedChapters int64
	if err := h.DB.Model(&db.Chapter{}).Where("fanfic_id = ?", id).Count(&totalChapters).Error; err != nil {
		return err
	}
	if err := h.DB.Model(&db.Chapter{}).
		Where("fanfic_id = ? AND localization_status = ?", id, db.LocalizationCompleted).
		Count(&localizedChapters).Error; err != nil {
		return err
	}

	status := "in_progress"
	if totalChapters > 0 && localizedChapters == totalChapters {
		status = "completed"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_chapters":     totalChapters,
		"localized_chapters": localizedChapters,
		"status":             status,
	})
}

func (h *FanficHandler) DeleteFanfic(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid fanfiction id")
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		return db.DeleteFanficTree(tx, uint(id))
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Error deleting fanfiction")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Fanfiction and associated chapters deleted permanently"})
}
