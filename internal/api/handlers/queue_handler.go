package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postpilot/postpilot/internal/queue"
)

type QueueHandler struct {
	q *queue.Queue
}

func NewQueueHandler(q *queue.Queue) *QueueHandler {
	return &QueueHandler{q: q}
}

func (h *QueueHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.q.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read queue stats",
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
