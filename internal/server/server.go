package server

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"

	"complaintbot/internal/dialog"
	"complaintbot/internal/dialogflow"
	"complaintbot/internal/lex"
	"complaintbot/internal/voice"
)

// CallHandler serves one media stream websocket for a phone call.
type CallHandler func(ctx context.Context, host string, c *websocket.Conn) error

type Options struct {
	Lex        *lex.Handler
	Dialogflow *dialogflow.Handler
	// Calls is nil when the phone channel is not configured.
	Calls  CallHandler
	Logger bool
}

func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.Logger {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/lex", func(c *fiber.Ctx) error {
		ev := lex.Event{}
		if err := c.BodyParser(&ev); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid JSON body")
		}

		resp, err := opts.Lex.Handle(c.UserContext(), ev)
		if err != nil {
			return turnError(c, err)
		}
		return c.JSON(resp)
	})

	app.Post("/dialogflow", func(c *fiber.Ctx) error {
		req := &dialogflow.WebhookRequest{}
		if err := c.BodyParser(req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid JSON body")
		}

		resp, err := opts.Dialogflow.Handle(c.UserContext(), req)
		if err != nil {
			return turnError(c, err)
		}
		return c.JSON(resp)
	})

	if opts.Calls != nil {
		registerVoice(app, opts.Calls)
	}

	return app
}

func registerVoice(app *fiber.App, calls CallHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("hostname", c.Hostname())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Post("/twiml", func(c *fiber.Ctx) error {
		xml, err := voice.ConnectStream(c.Hostname())
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
		return c.SendString(xml)
	})

	app.Get("/ws/media", websocket.New(func(c *websocket.Conn) {
		defer c.Close()

		host, _ := c.Locals("hostname").(string)
		if err := calls(context.Background(), host, c); err != nil {
			log.Println("server: failed to process media stream:", err)
		}
	}))
}

func turnError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lex.ErrInvalidEvent):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, lex.ErrInvalidBot):
		return errorJSON(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, dialog.ErrUnsupportedFlow):
		return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	log.Println("server: turn failed:", err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal error")
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
