// Package handlers implements the REST endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helios-home/helios/internal/application/device/usecases"
	"github.com/helios-home/helios/internal/shared/logger"
	"github.com/helios-home/helios/internal/shared/utils"
)

type DeviceHandler struct {
	listDevicesUC *usecases.ListDevicesUseCase
	logger        logger.Interface
}

func NewDeviceHandler(listDevicesUC *usecases.ListDevicesUseCase, log logger.Interface) *DeviceHandler {
	return &DeviceHandler{
		listDevicesUC: listDevicesUC,
		logger:        log,
	}
}

// List handles GET /api/v1/devices.
func (h *DeviceHandler) List(c *gin.Context) {
	pagination := utils.ParsePagination(c)
	query := usecases.ListDevicesQuery{
		Page:  pagination.Page,
		Limit: pagination.Limit,
		Full:  c.Query("full") == "true",
	}

	result, err := h.listDevicesUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, result)
}
