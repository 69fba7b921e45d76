package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/application/service/usecases"
	"github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
	"github.com/helios-home/helios/internal/shared/utils"
)

type ServiceHandler struct {
	createServiceUC *usecases.CreateServiceUseCase
	listServicesUC  *usecases.ListServicesUseCase
	installScriptUC *usecases.GenerateInstallScriptUseCase
	logger          logger.Interface
}

func NewServiceHandler(
	createServiceUC *usecases.CreateServiceUseCase,
	listServicesUC *usecases.ListServicesUseCase,
	installScriptUC *usecases.GenerateInstallScriptUseCase,
	log logger.Interface,
) *ServiceHandler {
	return &ServiceHandler{
		createServiceUC: createServiceUC,
		listServicesUC:  listServicesUC,
		installScriptUC: installScriptUC,
		logger:          log,
	}
}

// Create handles POST /api/v1/services.
func (h *ServiceHandler) Create(c *gin.Context) {
	var cmd usecases.CreateServiceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, errors.CodeInvalidJSON, err.Error())
		return
	}
	if err := utils.ValidateStruct(cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.createServiceUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result)
}

// List handles GET /api/v1/services?deviceMac=.
func (h *ServiceHandler) List(c *gin.Context) {
	deviceMAC := c.Query("deviceMac")
	if deviceMAC == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, errors.CodeInvalidQueryParams,
			"the deviceMac query parameter is required")
		return
	}

	services, err := h.listServicesUC.Execute(c.Request.Context(), deviceMAC)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, services)
}

// InstallScript handles GET /api/v1/services/:service_id/install-script?os=.
// The script body is served raw; only errors use the JSON envelope.
func (h *ServiceHandler) InstallScript(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("service_id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, errors.CodeInvalidQueryParams,
			"service_id must be a UUID")
		return
	}

	script, err := h.installScriptUC.Execute(c.Request.Context(), serviceID, c.Query("os"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", script.Filename))
	c.Data(http.StatusOK, script.MimeType, []byte(script.Content))
}
