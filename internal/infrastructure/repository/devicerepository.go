package repository

import (
	"context"

	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/infrastructure/database"
	"github.com/helios-home/helios/internal/infrastructure/persistence/mappers"
	"github.com/helios-home/helios/internal/infrastructure/persistence/models"
	"github.com/helios-home/helios/internal/shared/logger"
)

// DeviceRepository implements device.Repository on GORM.
type DeviceRepository struct {
	mapper mappers.DeviceMapper
	logger logger.Interface
}

var _ device.Repository = (*DeviceRepository)(nil)

// NewDeviceRepository creates a new DeviceRepository.
func NewDeviceRepository(log logger.Interface) *DeviceRepository {
	return &DeviceRepository{
		mapper: mappers.NewDeviceMapper(),
		logger: log,
	}
}

func (r *DeviceRepository) FetchAll(ctx context.Context, uow shared.UnitOfWork, pagination *device.Pagination) ([]*device.Device, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return nil, err
	}

	query := tx.WithContext(ctx).Model(&models.DeviceModel{}).Order("mac_address ASC")
	if pagination != nil && pagination.Limit > 0 {
		offset := (pagination.Page - 1) * pagination.Limit
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(pagination.Limit)
	}

	var rows []models.DeviceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	devices := make([]*device.Device, 0, len(rows))
	for i := range rows {
		dev, err := r.mapper.ToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func (r *DeviceRepository) CountAll(ctx context.Context, uow shared.UnitOfWork) (int64, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&models.DeviceModel{}).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *DeviceRepository) FetchOne(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress) (*device.Device, error) {
	tx, err := database.Tx(uow)
	if err != nil {
		return nil, err
	}

	var row models.DeviceModel
	if err := tx.WithContext(ctx).Where("mac_address = ?", mac.String()).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return r.mapper.ToDomain(&row)
}

func (r *DeviceRepository) Create(ctx context.Context, uow shared.UnitOfWork, dev *device.Device) error {
	tx, err := database.Tx(uow)
	if err != nil {
		return err
	}

	model := r.mapper.ToModel(dev)
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	r.logger.Debugw("device created", "mac", dev.MACAddress())
	return nil
}

func (r *DeviceRepository) Update(ctx context.Context, uow shared.UnitOfWork, dev *device.Device) error {
	tx, err := database.Tx(uow)
	if err != nil {
		return err
	}

	model := r.mapper.ToModel(dev)
	result := tx.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("mac_address = ?", model.MACAddress).
		Select("last_known_ip", "display_name", "is_name_custom", "notes", "is_online", "last_seen", "last_scanned").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
