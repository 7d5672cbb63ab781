// handlers/admin_routes.go
package handlers

import (
	"fmt"
	"time"

	"gig-rewards-system/middleware"
	"gig-rewards-system/models"
	"gig-rewards-system/services"
	"gig-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// SetupAdminRoutes wires catalog seeding and manual grants. These sit behind
// the same gateway token as everything else; the gateway only routes admins
// here.
func SetupAdminRoutes(
	app *fiber.App,
	profiles *services.ProfileService,
	missions *services.MissionService,
	badges *services.BadgeService,
	benefits *services.BenefitService,
) {
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/missions", func(c *fiber.Ctx) error {
		var req struct {
			Code        string             `json:"code"`
			Title       string             `json:"title"`
			Description string             `json:"description"`
			Type        models.MissionType `json:"type"`
			GoalCount   int64              `json:"goal_count"`
			XPReward    int64              `json:"xp_reward"`
			PointReward int64              `json:"point_reward"`
			ActivateAt  *time.Time         `json:"activate_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
		}
		switch req.Type {
		case models.MissionOnce, models.MissionDaily, models.MissionWeekly, models.MissionMonthly, models.MissionYearly:
		case "":
			req.Type = models.MissionOnce
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown mission type"})
		}
		if req.GoalCount < 1 {
			req.GoalCount = 1
		}
		if req.Code == "" {
			req.Code = slug.Make(req.Title)
		}

		mission := models.Mission{
			Code:        req.Code,
			Title:       req.Title,
			Description: req.Description,
			Type:        req.Type,
			GoalCount:   req.GoalCount,
			XPReward:    req.XPReward,
			PointReward: req.PointReward,
			Active:      req.ActivateAt == nil,
			ActivateAt:  req.ActivateAt,
		}
		if err := missions.DB.Create(&mission).Error; err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "failed to create mission (duplicate code?)",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(mission)
	})

	// multipart: fields name, description, code (optional) + icon file
	adminGroup.Post("/badges", func(c *fiber.Ctx) error {
		name := c.FormValue("name")
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}
		code := c.FormValue("code")
		if code == "" {
			code = slug.Make(name)
		}

		badge := models.Badge{
			Code:        code,
			Name:        name,
			Description: c.FormValue("description"),
		}

		if icon, err := c.FormFile("icon"); err == nil {
			key := fmt.Sprintf("badges/%s-%s", code, uuid.NewString())
			url, err := utils.UploadBadgeIcon(icon, key)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "icon upload failed",
					"cause": err.Error(),
				})
			}
			badge.IconURL = url
		}

		if err := badges.DB.Create(&badge).Error; err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "failed to create badge (duplicate code?)",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(badge)
	})

	adminGroup.Post("/benefits", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Cost        int64  `json:"cost"`
			EffectCode  string `json:"effect_code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.Name == "" || req.Cost <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and positive cost required"})
		}
		if req.EffectCode == "" {
			req.EffectCode = slug.Make(req.Name)
		}
		benefit := models.PlatformBenefit{
			Name:        req.Name,
			Description: req.Description,
			Cost:        req.Cost,
			EffectCode:  req.EffectCode,
		}
		if err := benefits.DB.Create(&benefit).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create benefit",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(benefit)
	})

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		if req.UserID == "" || req.XP <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id and positive xp required"})
		}

		if _, err := profiles.EnsureProfile(req.UserID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to ensure profile",
				"cause": err.Error(),
			})
		}
		profile, err := profiles.AddXP(req.UserID, req.XP)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "XP grant failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "XP granted successfully",
			"user_id": req.UserID,
			"xp":      profile.XP,
			"level":   profile.Level,
			"reason":  req.Reason,
		})
	})
}
