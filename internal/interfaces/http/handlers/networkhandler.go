package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helios-home/helios/internal/application/network/usecases"
	"github.com/helios-home/helios/internal/domain/device"
	apperrors "github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
	"github.com/helios-home/helios/internal/shared/utils"
)

type NetworkHandler struct {
	fetchStatusUC *usecases.FetchNetworkStatusUseCase
	logger        logger.Interface
}

func NewNetworkHandler(fetchStatusUC *usecases.FetchNetworkStatusUseCase, log logger.Interface) *NetworkHandler {
	return &NetworkHandler{
		fetchStatusUC: fetchStatusUC,
		logger:        log,
	}
}

// Status handles GET /api/v1/network.
func (h *NetworkHandler) Status(c *gin.Context) {
	status, err := h.fetchStatusUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, mapRouterError(err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, status)
}

// mapRouterError translates the router error set into stable response codes.
func mapRouterError(err error) error {
	switch {
	case errors.Is(err, device.ErrRouterUnavailable):
		return apperrors.New(apperrors.CodeRouterAPIUnavailable,
			"the router API is unavailable", http.StatusBadGateway)
	case errors.Is(err, device.ErrRouterAuthFailed):
		return apperrors.New(apperrors.CodeRouterAPIAuthFailed,
			"router API authentication failed", http.StatusBadGateway)
	case errors.Is(err, device.ErrRouterInvalidResponse):
		return apperrors.New(apperrors.CodeRouterAPIInvalidResponse,
			"the router API returned an invalid response", http.StatusBadGateway)
	}
	return err
}
