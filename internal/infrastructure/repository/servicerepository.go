package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/infrastructure/database"
	"github.com/helios-home/helios/internal/infrastructure/persistence/mappers"
	"github.com/helios-home/helios/internal/infrastructure/persistence/models"
	"github.com/helios-home/helios/internal/shared/logger"
)

// ServiceRepository implements service.Repository on GORM.
type ServiceRepository struct {
	mapper mappers.ServiceMapper
	logger logger.Interface
}

var _ service.Repository = (*ServiceRepository)(nil)

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(log logger.Interface) *ServiceRepository {
	return &ServiceRepository{
		mapper: mappers.NewServiceMapper(),
		logger: log,
	}
}

func (r *ServiceRepository) FetchAllOfDevice(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress) ([]*service.Service, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return nil, err
	}

	var rows []models.ServiceModel
	if err := tx.WithContext(ctx).
		Preload("Ports").
		Where("device_mac = ?", mac.String()).
		Order("service_id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	services := make([]*service.Service, 0, len(rows))
	for i := range rows {
		svc, err := r.mapper.ToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, nil
}

func (r *ServiceRepository) FetchOne(ctx context.Context, uow shared.UnitOfWork, serviceID uuid.UUID) (*service.Service, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return nil, err
	}

	var row models.ServiceModel
	if err := tx.WithContext(ctx).
		Preload("Ports").
		Where("service_id = ?", serviceID.String()).
		First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return r.mapper.ToDomain(&row)
}

// FindOne resolves port-set equivalence through the stored fingerprint, so
// lookup and the unique index agree on what "the same service" means.
func (r *ServiceRepository) FindOne(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress, kind service.Kind, ports []service.PortTemplate) (*service.Service, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return nil, err
	}

	var row models.ServiceModel
	err = tx.WithContext(ctx).
		Preload("Ports").
		Where("device_mac = ? AND kind = ? AND ports_fingerprint = ?",
			mac.String(), string(kind), service.FingerprintTemplates(ports)).
		First(&row).Error
	if err != nil {
		translated := translateError(err)
		if errors.Is(translated, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, translated
	}
	return r.mapper.ToDomain(&row)
}

func (r *ServiceRepository) Create(ctx context.Context, uow shared.UnitOfWork, svc *service.Service) error {
	tx, err := database.Tx(uow)
	if err != nil {
		return err
	}

	model := r.mapper.ToModel(svc)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	r.logger.Debugw("service created", "service_id", svc.ServiceID(), "kind", svc.Kind())
	return nil
}

// Update rewrites the service row and replaces its ports in one transaction.
func (r *ServiceRepository) Update(ctx context.Context, uow shared.UnitOfWork, svc *service.Service) error {
	tx, err := database.Tx(uow)
	if err != nil {
		return err
	}

	var existing models.ServiceModel
	if err := tx.WithContext(ctx).
		Where("service_id = ?", svc.ServiceID().String()).
		First(&existing).Error; err != nil {
		return translateError(err)
	}

	model := r.mapper.ToModel(svc)
	result := tx.WithContext(ctx).
		Model(&models.ServiceModel{}).
		Where("id = ?", existing.ID).
		Select("display_name", "is_managed", "token", "ports_fingerprint").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}

	if err := tx.WithContext(ctx).
		Where("service_model_id = ?", existing.ID).
		Delete(&models.ServicePortModel{}).Error; err != nil {
		return translateError(err)
	}
	for i := range model.Ports {
		model.Ports[i].ServiceModelID = existing.ID
	}
	if len(model.Ports) > 0 {
		if err := tx.WithContext(ctx).Create(&model.Ports).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}
