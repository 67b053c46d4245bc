package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DeusGroup/SalesLeaderboard/middleware"
	"github.com/DeusGroup/SalesLeaderboard/models"
	"github.com/DeusGroup/SalesLeaderboard/services"
	"github.com/DeusGroup/SalesLeaderboard/store"
	"github.com/DeusGroup/SalesLeaderboard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// participantView is the read shape: the participant plus goal-progress
// percentages. Progress is display-only and never feeds the score.
type participantView struct {
	models.Participant
	Progress progressView `json:"progress"`
}

type progressView struct {
	BoardRevenue int `json:"boardRevenue"`
	MSPRevenue   int `json:"mspRevenue"`
	VoiceSeats   int `json:"voiceSeats"`
	TotalDeals   int `json:"totalDeals"`
}

func viewOf(p models.Participant) participantView {
	return participantView{
		Participant: p,
		Progress: progressView{
			BoardRevenue: services.Progress(p.BoardRevenue, p.BoardRevenueGoal),
			MSPRevenue:   services.Progress(p.MSPRevenue, p.MSPRevenueGoal),
			VoiceSeats:   services.Progress(p.VoiceSeats, p.VoiceSeatsGoal),
			TotalDeals:   services.Progress(p.TotalDeals, p.TotalDealsGoal),
		},
	}
}

// SetupParticipantRoutes registers the public leaderboard reads and the
// admin-gated participant, metrics and deal endpoints.
func SetupParticipantRoutes(
	app *fiber.App,
	sessions *session.Store,
	participantService *services.ParticipantService,
	scoringService *services.ScoringService,
) {
	// Public routes — the leaderboard page needs no login.
	app.Get("/api/leaderboard", func(c *fiber.Ctx) error {
		participants, err := participantService.ListByScore(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		views := make([]participantView, len(participants))
		for i, p := range participants {
			views[i] = viewOf(p)
		}
		return c.JSON(views)
	})

	app.Get("/api/participants/:id", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		p, err := participantService.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	// Admin routes — every mutation requires an authenticated session.
	admin := app.Group("/api", middleware.RequireAdmin(sessions))

	admin.Get("/participants", func(c *fiber.Ctx) error {
		participants, err := participantService.ListByScore(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		views := make([]participantView, len(participants))
		for i, p := range participants {
			views[i] = viewOf(p)
		}
		return c.JSON(views)
	})

	admin.Post("/participants", func(c *fiber.Ctx) error {
		var body struct {
			Name       string `json:"name"`
			Role       string `json:"role"`
			Department string `json:"department"`
			services.MetricsPatch
			services.GoalsPatch
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid participant payload"})
		}
		p, err := participantService.Create(c.Context(), services.CreateParticipantInput{
			Name:       body.Name,
			Role:       body.Role,
			Department: body.Department,
			Metrics:    body.MetricsPatch,
			Goals:      body.GoalsPatch,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(viewOf(*p))
	})

	admin.Patch("/participants/:id", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		var fields store.ProfileFields
		if err := c.BodyParser(&fields); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid profile payload"})
		}
		if err := participantService.UpdateProfile(c.Context(), id, fields); err != nil {
			return respondError(c, err)
		}
		p, err := participantService.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	admin.Patch("/participants/:id/metrics", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		var body struct {
			services.MetricsPatch
			services.GoalsPatch
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid metrics payload"})
		}
		p, err := scoringService.UpdateMetrics(c.Context(), id, body.MetricsPatch, body.GoalsPatch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	admin.Delete("/participants/:id", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		if err := participantService.Delete(c.Context(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin.Post("/participants/:id/deals", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		var input services.DealInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid deal payload"})
		}
		p, err := scoringService.AddDeal(c.Context(), id, input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(viewOf(*p))
	})

	admin.Delete("/participants/:id/deals/:dealId", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		p, err := scoringService.RemoveDeal(c.Context(), id, c.Params("dealId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	admin.Post("/participants/:id/deals/bulk-delete", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		var body struct {
			DealIDs []string `json:"dealIds"`
		}
		if err := c.BodyParser(&body); err != nil || len(body.DealIDs) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dealIds is required"})
		}
		p, err := scoringService.RemoveManyDeals(c.Context(), id, body.DealIDs)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	admin.Patch("/participants/:id/deals/bulk", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		var body struct {
			DealIDs []string `json:"dealIds"`
			Title   string   `json:"title"`
		}
		if err := c.BodyParser(&body); err != nil || len(body.DealIDs) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dealIds is required"})
		}
		p, err := scoringService.UpdateManyDeals(c.Context(), id, body.DealIDs, body.Title)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})

	admin.Post("/participants/:id/avatar", func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return nil
		}
		p, err := participantService.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err)
		}

		avatar, err := c.FormFile("avatar")
		if err != nil || avatar.Size == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}
		ext := strings.ToLower(filepath.Ext(avatar.Filename))
		if !allowedAvatarExts[ext] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported avatar file type"})
		}

		filename := fmt.Sprintf("%s-%s%s", slug.Make(p.Name), uuid.NewString(), ext)

		var url string
		if utils.R2Enabled() {
			url, err = utils.UploadFileToR2(avatar, "avatars/"+filename)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to upload avatar", "details": err.Error(),
				})
			}
		} else {
			if err := utils.SaveFile(avatar, utils.GetUploadPath(filename)); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to store avatar", "details": err.Error(),
				})
			}
			url = "/uploads/" + filename
		}

		if err := participantService.UpdateProfile(c.Context(), id, store.ProfileFields{AvatarURL: &url}); err != nil {
			return respondError(c, err)
		}
		p, err = participantService.Get(c.Context(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(viewOf(*p))
	})
}

// parseID reads the :id route param. On a malformed id it writes the 400
// response itself and reports false.
func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid participant id"})
		return 0, false
	}
	return uint(id), true
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrDealNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error", "details": err.Error(),
		})
	}
}
