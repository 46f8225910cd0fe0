// handlers/gamification_routes.go
package handlers

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mood-journal-system/middleware"
	"mood-journal-system/models"
	"mood-journal-system/services"
	"mood-journal-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
)

var titleCaser = cases.Title(language.English)

// tierName returns the display form of a tier tag ("gold" → "Gold").
func tierName(tier string) string {
	if tier == models.TierNone {
		return "None"
	}
	return titleCaser.String(tier)
}

func SetupGamificationRoutes(app *fiber.App, gamification *services.GamificationService, achievements *services.AchievementService) {
	// 🔐 Secured routes — require user context from the gateway.
	// The gateway forwards paths like /api/v1/journal/s/user/stats -> /user/stats
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		snapshot, err := gamification.GetSnapshot(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(snapshot)
	})

	securedGroup.Get("/user/points/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		entries, total, err := gamification.GetPointsHistory(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"entries":     entries,
			"page":        page,
			"size":        size,
			"total_items": total,
		})
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		unlocked, available, err := achievements.ListForUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievements",
				"cause": err.Error(),
			})
		}

		var unlockedResp []fiber.Map
		for _, ua := range unlocked {
			unlockedResp = append(unlockedResp, fiber.Map{
				"id":          ua.ID,
				"key":         ua.Achievement.Key,
				"name":        ua.Achievement.Name,
				"description": ua.Achievement.Description,
				"icon_url":    ua.Achievement.IconURL,
				"category":    ua.Achievement.Category,
				"tier":        ua.Achievement.Tier,
				"tier_name":   tierName(ua.Achievement.Tier),
				"points":      ua.Achievement.PointsReward,
				"unlocked_at": ua.UnlockedAt,
				"progress":    ua.Progress,
			})
		}

		var availableResp []fiber.Map
		for _, a := range available {
			availableResp = append(availableResp, fiber.Map{
				"key":         a.Key,
				"name":        a.Name,
				"description": a.Description,
				"icon_url":    a.IconURL,
				"category":    a.Category,
				"tier":        a.Tier,
				"tier_name":   tierName(a.Tier),
				"points":      a.PointsReward,
			})
		}

		return c.JSON(fiber.Map{
			"unlocked":  unlockedResp,
			"available": availableResp,
		})
	})

	securedGroup.Post("/user/events", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			EventType  string                 `json:"event_type" validate:"required"`
			SourceType string                 `json:"source_type"`
			SourceID   string                 `json:"source_id"`
			Metadata   map[string]interface{} `json:"metadata"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.EventType == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "event_type is required"})
		}

		var source *services.Source
		if req.SourceType != "" || req.SourceID != "" {
			source = &services.Source{Type: req.SourceType, ID: req.SourceID}
		}

		points, err := gamification.AwardPoints(userID, req.EventType, source, req.Metadata)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points award failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"event_type":     req.EventType,
			"points_awarded": points,
		})
	})

	streakHandler := func(update func(string, time.Time) (int, error)) fiber.Handler {
		return func(c *fiber.Ctx) error {
			userID := c.Locals("user_id").(string)

			var req struct {
				Date string `json:"date"` // "2006-01-02", defaults to today
			}
			if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid JSON",
					"cause": err.Error(),
				})
			}

			date := time.Now()
			if req.Date != "" {
				parsed, err := time.Parse("2006-01-02", req.Date)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
				}
				date = parsed
			}

			current, err := update(userID, date)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "streak update failed",
					"cause": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"current_streak": current})
		}
	}

	securedGroup.Post("/user/streaks/mood", streakHandler(gamification.UpdateMoodStreak))
	securedGroup.Post("/user/streaks/writing", streakHandler(gamification.UpdateWritingStreak))

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/points/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID    string                 `json:"user_id" validate:"required,uuid"`
			EventType string                 `json:"event_type" validate:"required"`
			Metadata  map[string]interface{} `json:"metadata"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.EventType == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and event_type are required"})
		}

		points, err := gamification.AwardPoints(req.UserID, req.EventType, nil, req.Metadata)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "points grant failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message":        "points granted successfully",
			"user_id":        req.UserID,
			"points_awarded": points,
		})
	})

	adminGroup.Post("/achievements", func(c *fiber.Ctx) error {
		name := strings.TrimSpace(c.FormValue("name"))
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}

		achievement := models.Achievement{
			Key:          slug.Make(name),
			Name:         name,
			Description:  c.FormValue("description"),
			Category:     c.FormValue("category", models.CategoryMilestone),
			Tier:         c.FormValue("tier", models.TierNone),
			CriteriaType: c.FormValue("criteria_type"),
			Secret:       c.FormValue("secret") == "true",
			IsActive:     true,
		}

		if raw := c.FormValue("criteria_params"); raw != "" {
			var params datatypes.JSONMap
			if err := params.UnmarshalJSON([]byte(raw)); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "criteria_params must be a JSON object"})
			}
			achievement.CriteriaParams = params
		}

		if icon, err := c.FormFile("icon"); err == nil {
			key := "achievements/" + achievement.Key + filepath.Ext(icon.Filename)
			if utils.R2Enabled() {
				iconURL, err := utils.UploadFileToR2(icon, key)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"error": "icon upload failed",
						"cause": err.Error(),
					})
				}
				achievement.IconURL = iconURL
			} else {
				dest := utils.GetUploadPath(key)
				if err := utils.SaveFile(icon, dest); err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"error": "icon upload failed",
						"cause": err.Error(),
					})
				}
				achievement.IconURL = "/" + filepath.ToSlash(dest)
			}
		}

		if err := achievements.DB.Create(&achievement).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create achievement",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(achievement)
	})

	adminGroup.Post("/achievements/recheck", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
		}
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		unlocked, err := gamification.RecheckAchievements(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "recheck failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"user_id":        req.UserID,
			"newly_unlocked": unlocked,
		})
	})

	adminGroup.Post("/streaks/recalculate", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
		}
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}

		stats, err := gamification.RebuildStreaks(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "streak recalculation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"user_id":                req.UserID,
			"current_mood_streak":    stats.CurrentMoodStreak,
			"longest_mood_streak":    stats.LongestMoodStreak,
			"current_writing_streak": stats.CurrentWritingStreak,
			"longest_writing_streak": stats.LongestWritingStreak,
		})
	})
}
