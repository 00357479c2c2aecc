package http

import "github.com/gofiber/fiber/v2"

// Health responde sin autenticación; incluye el driver de almacenamiento activo.
func Health(storeDriver string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "store": storeDriver})
	}
}
