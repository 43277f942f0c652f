package httpapi

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HostAllowlist rejects requests whose Host header is not configured.
// A "*" entry disables the check (development default). Matching is on the
// host alone; any port in the Host header is ignored.
func HostAllowlist(allowed []string) fiber.Handler {
	allowAll := false
	hosts := make(map[string]struct{}, len(allowed))
	for _, h := range allowed {
		if h == "*" {
			allowAll = true
		}
		hosts[strings.ToLower(h)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if allowAll {
			return c.Next()
		}
		host := strings.ToLower(c.Hostname())
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if _, ok := hosts[host]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "host not allowed",
			})
		}
		return c.Next()
	}
}
