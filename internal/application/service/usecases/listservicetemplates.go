package usecases

import (
	"context"

	"github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/service"
)

// ListServiceTemplatesUseCase exposes the port templates of every known
// service kind. The template set is static, no persistence is involved.
type ListServiceTemplatesUseCase struct{}

// NewListServiceTemplatesUseCase creates a new ListServiceTemplatesUseCase.
func NewListServiceTemplatesUseCase() *ListServiceTemplatesUseCase {
	return &ListServiceTemplatesUseCase{}
}

// Execute returns the templates of all service kinds.
func (uc *ListServiceTemplatesUseCase) Execute(_ context.Context) []dto.ServiceTemplateDTO {
	templates := service.Templates()
	out := make([]dto.ServiceTemplateDTO, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, dto.TemplateFromDomain(tpl))
	}
	return out
}
