package middleware

import (
	"strings"

	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	HeaderDeviceID  = "x-device-id"
	DeviceCookie    = "device_id"
	ContextDeviceID = "device_id"
)

// DeviceContext resolves a guest device token (header first, cookie
// second) into a device id for quota purposes. Unknown or missing tokens
// just leave the request device-less; the rate limiter falls back to IP.
func DeviceContext(devices *service.DeviceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderDeviceID))
		if token == "" {
			if v, err := c.Cookie(DeviceCookie); err == nil {
				token = strings.TrimSpace(v)
			}
		}
		if token == "" {
			c.Next()
			return
		}

		device, err := devices.Validate(c.Request.Context(), token)
		if err != nil || device == nil {
			c.Next()
			return
		}

		c.Set(ContextDeviceID, device.ID.String())
		c.Next()
	}
}
