package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"medication_reminder/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatusProvider exposes the last drawn status line.
type StatusProvider interface {
	Status() app.StatusSnapshot
}

// Presser is the simulated confirmation sensor.
type Presser interface {
	Press()
}

type ControlHandler struct {
	channel *app.ConfigChannel
	trigger *app.Trigger
	button  Presser
	status  StatusProvider
	logger  *logrus.Entry
}

func NewControlHandler(channel *app.ConfigChannel, trigger *app.Trigger, button Presser, status StatusProvider, logger *logrus.Entry) *ControlHandler {
	return &ControlHandler{
		channel: channel,
		trigger: trigger,
		button:  button,
		status:  status,
		logger:  logger,
	}
}

func (h *ControlHandler) GetCharacteristic(c *gin.Context) {
	target := app.Target(c.Param("target"))
	value, err := h.channel.Read(target)
	switch {
	case errors.Is(err, app.ErrNotReadable):
		writeError(c, http.StatusForbidden, "not_readable", "characteristic is write-only")
		return
	case errors.Is(err, app.ErrUnknownTarget):
		writeError(c, http.StatusNotFound, "unknown_target", "unknown characteristic")
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": target, "value": value})
}

// PutCharacteristic takes the raw request body as the payload, the way a
// characteristic write carries raw bytes.
func (h *ControlHandler) PutCharacteristic(c *gin.Context) {
	target := app.Target(c.Param("target"))
	body, err := c.GetRawData()
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	payload := strings.TrimRight(string(body), "\r\n")

	err = h.channel.Write(c.Request.Context(), target, payload)
	switch {
	case errors.Is(err, app.ErrUnknownTarget):
		writeError(c, http.StatusNotFound, "unknown_target", "unknown characteristic")
		return
	case errors.Is(err, app.ErrNotWritable):
		writeError(c, http.StatusMethodNotAllowed, "not_writable", "characteristic is read-only")
		return
	case err != nil:
		h.logger.WithError(err).WithField("target", target).Error("Characteristic write not persisted")
		writeError(c, http.StatusInternalServerError, "persist_failed", "value applied but not saved")
		return
	}

	if target == app.TargetCredentials {
		c.JSON(http.StatusOK, gin.H{"target": target})
		return
	}
	value, _ := h.channel.Read(target)
	c.JSON(http.StatusOK, gin.H{"target": target, "value": value})
}

func (h *ControlHandler) PressSensor(c *gin.Context) {
	h.button.Press()
	c.JSON(http.StatusAccepted, gin.H{"status": "pressed"})
}

func (h *ControlHandler) Trigger(c *gin.Context) {
	h.trigger.Fire()
	c.JSON(http.StatusAccepted, gin.H{"status": "triggered"})
}

func (h *ControlHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Status())
}
