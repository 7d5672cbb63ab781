// handlers/event_routes.go
package handlers

import (
	"gig-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEventRoutes exposes the inbound domain-event contract to the emitting
// services (gigs, applications, submissions, reviews, auth). These are
// service-to-service calls behind the gateway token; they always answer 202 —
// reward crediting is never allowed to fail the triggering domain action, so
// internal failures are logged, not surfaced.
func SetupEventRoutes(app *fiber.App, events *services.RewardEvents) {
	group := app.Group("/internal/events")

	type userEvent struct {
		UserID string `json:"user_id"`
	}

	group.Post("/user-created", func(c *fiber.Ctx) error {
		var req userEvent
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id required"})
		}
		if err := events.OnUserCreated(req.UserID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create reward profile",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "profile ready"})
	})

	group.Post("/user-logged-in", func(c *fiber.Ctx) error {
		var req userEvent
		if err := c.BodyParser(&req); err != nil || req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id required"})
		}
		events.OnUserLoggedIn(req.UserID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "accepted"})
	})

	group.Post("/gig-created", func(c *fiber.Ctx) error {
		var req struct {
			ClientID string `json:"client_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ClientID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "client_id required"})
		}
		events.OnGigCreated(req.ClientID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "accepted"})
	})

	group.Post("/application-created", func(c *fiber.Ctx) error {
		var req struct {
			ApplicantID string `json:"applicant_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ApplicantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "applicant_id required"})
		}
		events.OnApplicationCreated(req.ApplicantID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "accepted"})
	})

	group.Post("/submission-created", func(c *fiber.Ctx) error {
		var req struct {
			FreelancerID string `json:"freelancer_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.FreelancerID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "freelancer_id required"})
		}
		events.OnSubmissionCreated(req.FreelancerID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "accepted"})
	})

	group.Post("/review-created", func(c *fiber.Ctx) error {
		var req struct {
			ClientID     string `json:"client_id"`
			FreelancerID string `json:"freelancer_id"`
		}
		if err := c.BodyParser(&req); err != nil || req.ClientID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "client_id required"})
		}
		events.OnReviewCreated(req.ClientID, req.FreelancerID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "accepted"})
	})
}
