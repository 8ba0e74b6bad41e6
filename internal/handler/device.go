package handler

import (
	"net/http"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	devices *service.DeviceService
}

func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// Handles POST /api/device. Issues a guest device token; the client sends
// it back in the x-device-id header so quota follows the browser, not the IP.
func (h *DeviceHandler) Issue(c *gin.Context) {
	token, err := h.devices.Issue(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to issue device token")
		return
	}
	response.Created(c, gin.H{"device_token": token})
}
