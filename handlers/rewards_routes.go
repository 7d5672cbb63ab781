// handlers/rewards_routes.go
package handlers

import (
	"errors"
	"strconv"

	"gig-rewards-system/middleware"
	"gig-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRewardRoutes wires the read surface: profile, missions, progress,
// badges, benefits, leaderboard, and the SSE stream.
func SetupRewardRoutes(
	app *fiber.App,
	profiles *services.ProfileService,
	missions *services.MissionService,
	badges *services.BadgeService,
	benefits *services.BenefitService,
	stream *services.StreamService,
	authClient *services.AuthServiceClient,
) {
	// 🔐 Secured routes — require user context forwarded by the Gateway.
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		profile, err := profiles.GetProfile(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load reward profile",
				"cause": err.Error(),
			})
		}
		nextLevelXP := services.XPForLevel(profile.Level + 1)
		return c.JSON(fiber.Map{
			"external_user_id": profile.ExternalUserID,
			"xp":               profile.XP,
			"level":            profile.Level,
			"points":           profile.Points,
			"next_level_xp":    nextLevelXP,
			"last_level_up_at": profile.LastLevelUpAt,
		})
	})

	securedGroup.Get("/missions", func(c *fiber.Ctx) error {
		list, err := missions.ListActive()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list missions",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	securedGroup.Get("/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		rows, err := missions.ListProgress(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	// Completed-but-unseen completions, for replaying missed toasts.
	securedGroup.Get("/progress/recent", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		rows, err := missions.RecentUnseen(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list recent completions",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	securedGroup.Post("/progress/:id/seen", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := missions.MarkSeen(userID, c.Params("id")); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "progress not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark seen",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"message": "OK", "seen": true})
	})

	securedGroup.Get("/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		list, err := badges.ListForUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list badges",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	securedGroup.Get("/user-badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		held, err := badges.ListUserBadges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list user badges",
				"cause": err.Error(),
			})
		}
		return c.JSON(held)
	})

	securedGroup.Get("/benefits", func(c *fiber.Ctx) error {
		list, err := benefits.List()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list benefits",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	securedGroup.Get("/user-benefits", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		owned, err := benefits.ListOwned(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list owned benefits",
				"cause": err.Error(),
			})
		}
		return c.JSON(owned)
	})

	securedGroup.Post("/benefits/:id/buy", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		purchase, err := benefits.Purchase(userID, c.Params("id"))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrBenefitNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "benefit not found"})
			case errors.Is(err, services.ErrBenefitOwned):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "benefit already owned"})
			case errors.Is(err, services.ErrInsufficientPoints):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient points"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "purchase failed",
					"cause": err.Error(),
				})
			}
		}
		return c.Status(fiber.StatusCreated).JSON(purchase)
	})

	// Public leaderboards: one per marketplace role, ordered xp desc, level desc.
	app.Get("/leaderboard/:role", func(c *fiber.Ctx) error {
		role := c.Params("role")
		if role != "freelancer" && role != "client" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown leaderboard"})
		}
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		entries, err := profiles.Leaderboard(role, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(entries)
	})

	// SSE stream — authenticated by query token (EventSource can't set
	// headers), so it lives outside the /s header-context prefix.
	app.Get("/rewards/stream", middleware.SSEAuthMiddleware(authClient), stream.StreamRewardsSSE)
}
