package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/queue"
	"github.com/postpilot/postpilot/internal/service"
	"github.com/postpilot/postpilot/internal/transfer"
)

type PostHandler struct {
	s     service.PostService
	queue *queue.Queue
	cfg   config.Config
}

func NewPostHandler(cfg config.Config, service service.PostService, queue *queue.Queue) *PostHandler {
	return &PostHandler{s: service, queue: queue, cfg: cfg}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	postID, delay, err := h.s.CreatePost(c.Context(), userID, &pc)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrNotFound) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The queue carries future posts only when it is the primary dispatcher;
	// otherwise the poller owns them and the queue stays inert.
	if pc.ScheduledTime != "" && h.cfg.Dispatcher == "queue" {
		if err := h.queue.Enqueue(postID, delay); err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"post_id": postID,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userId := GetUserID(c)
	postId := c.QueryInt("id", 0)

	if postId != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postId), userId)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	filters := transfer.PostFilters{
		Status:    c.Query("status"),
		PostType:  c.Query("post_type"),
		AccountID: int64(c.QueryInt("account_id", 0)),
	}

	posts, err := h.s.List(c.Context(), userId, &filters)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postId := c.QueryInt("id", 0)

	// A queued task for this post has to go before the record does.
	if _, err := h.queue.Cancel(int64(postId)); err != nil {
		slog.Info(err.Error())
	}

	err := h.s.Remove(c.Context(), userID, int64(postId))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
