package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helios-home/helios/internal/application/service/usecases"
	"github.com/helios-home/helios/internal/shared/utils"
)

type ServiceTemplateHandler struct {
	listTemplatesUC *usecases.ListServiceTemplatesUseCase
}

func NewServiceTemplateHandler(listTemplatesUC *usecases.ListServiceTemplatesUseCase) *ServiceTemplateHandler {
	return &ServiceTemplateHandler{listTemplatesUC: listTemplatesUC}
}

// List handles GET /api/v1/service-templates.
func (h *ServiceTemplateHandler) List(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, h.listTemplatesUC.Execute(c.Request.Context()))
}
