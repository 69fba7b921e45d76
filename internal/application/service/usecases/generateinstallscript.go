package usecases

import (
	"context"
	_ "embed"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	sharedconfig "github.com/helios-home/helios/internal/shared/config"
	"github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
)

//go:embed scripts/install_script_linux.sh
var installScriptLinux string

// GenerateInstallScriptUseCase renders the per-OS installer of a service.
// Every download rotates the agent token, so a script invalidates all scripts
// downloaded before it.
type GenerateInstallScriptUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	services    service.Repository
	tokenGen    sharedservices.TokenGenerator
	agents      *sharedconfig.AgentConfig
	baseURL     string
	logger      logger.Interface
}

// NewGenerateInstallScriptUseCase creates a new GenerateInstallScriptUseCase.
// baseURL is the externally reachable URL of this server as agents see it.
func NewGenerateInstallScriptUseCase(
	uowProvider shared.UnitOfWorkProvider,
	services service.Repository,
	tokenGen sharedservices.TokenGenerator,
	agents *sharedconfig.AgentConfig,
	baseURL string,
	log logger.Interface,
) *GenerateInstallScriptUseCase {
	return &GenerateInstallScriptUseCase{
		uowProvider: uowProvider,
		services:    services,
		tokenGen:    tokenGen,
		agents:      agents,
		baseURL:     baseURL,
		logger:      log,
	}
}

// Execute rotates the service token, persists it and returns the rendered
// installer for the requested operating system.
func (uc *GenerateInstallScriptUseCase) Execute(ctx context.Context, serviceID uuid.UUID, os string) (*dto.InstallScriptDTO, error) {
	if os != "linux" {
		return nil, errors.New(errors.CodeInvalidQueryParams,
			fmt.Sprintf("unsupported operating system %q", os), http.StatusBadRequest)
	}

	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := uc.services.FetchOne(ctx, uow, serviceID)
	if err != nil {
		uc.rollback(ctx, uow)
		if stderrors.Is(err, shared.ErrNotFound) {
			return nil, errors.NewNotFoundError("service not found")
		}
		return nil, err
	}

	if err := svc.RotateToken(uc.tokenGen.Generate); err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}
	if err := uc.services.Update(ctx, uow, svc); err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}
	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return nil, err
	}

	uc.logger.Infow("install script generated, token rotated",
		"service_id", serviceID,
		"os", os,
	)

	content := strings.NewReplacer(
		"{agent_binary_base_url}", uc.downloadBaseURL(svc.Kind()),
		"{helios_base_url}", uc.baseURL,
		"{service_id}", svc.ServiceID().String(),
		"{token}", svc.Token(),
	).Replace(installScriptLinux)
	content = strings.ReplaceAll(content, "\r", "")

	return &dto.InstallScriptDTO{
		Content:  content,
		MimeType: "text/x-shellscript",
		Filename: "install_script.sh",
	}, nil
}

func (uc *GenerateInstallScriptUseCase) downloadBaseURL(kind service.Kind) string {
	switch kind {
	case service.KindHelloWorld:
		return uc.agents.HelloWorld.DownloadBaseURL
	case service.KindHelloWorld2:
		return uc.agents.HelloWorld2.DownloadBaseURL
	}
	return ""
}

func (uc *GenerateInstallScriptUseCase) rollback(ctx context.Context, uow shared.UnitOfWork) {
	if err := uc.uowProvider.Rollback(ctx, uow); err != nil {
		uc.logger.Errorw("rollback failed", "error", err)
	}
}
