// Package testutil provides in-memory implementations of the persistence and
// routing ports for use case tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/agent"
	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
)

// nopUnitOfWork satisfies the marker interface without a real transaction.
type nopUnitOfWork struct {
	shared.UnitOfWorkBase
}

// UnitOfWorkProvider counts transaction boundaries and optionally fails Begin.
type UnitOfWorkProvider struct {
	mu        sync.Mutex
	BeginErr  error
	Begun     int
	Committed int
	RolledBck int
}

var _ shared.UnitOfWorkProvider = (*UnitOfWorkProvider)(nil)

func (p *UnitOfWorkProvider) Begin(context.Context) (shared.UnitOfWork, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.BeginErr != nil {
		return nil, p.BeginErr
	}
	p.Begun++
	return &nopUnitOfWork{}, nil
}

func (p *UnitOfWorkProvider) Commit(context.Context, shared.UnitOfWork) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Committed++
	return nil
}

func (p *UnitOfWorkProvider) Rollback(context.Context, shared.UnitOfWork) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.RolledBck++
	return nil
}

// ServiceRepository is an in-memory service.Repository. The equivalence index
// of the real schema is emulated by the fingerprint check in Create.
type ServiceRepository struct {
	mu       sync.Mutex
	services map[uuid.UUID]*service.Service

	CreateErr error
	UpdateErr error
}

var _ service.Repository = (*ServiceRepository)(nil)

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{services: make(map[uuid.UUID]*service.Service)}
}

// Seed inserts a service bypassing constraint checks.
func (r *ServiceRepository) Seed(svc *service.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.ServiceID()] = svc
}

func (r *ServiceRepository) FetchAllOfDevice(_ context.Context, _ shared.UnitOfWork, mac valueobjects.MACAddress) ([]*service.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*service.Service
	for _, svc := range r.services {
		if svc.DeviceMAC() == mac {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ServiceID().String() < out[j].ServiceID().String()
	})
	return out, nil
}

func (r *ServiceRepository) FetchOne(_ context.Context, _ shared.UnitOfWork, serviceID uuid.UUID) (*service.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[serviceID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return svc, nil
}

func (r *ServiceRepository) FindOne(_ context.Context, _ shared.UnitOfWork, mac valueobjects.MACAddress, kind service.Kind, ports []service.PortTemplate) (*service.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fingerprint := service.FingerprintTemplates(ports)
	for _, svc := range r.services {
		if svc.DeviceMAC() == mac && svc.Kind() == kind && svc.PortsFingerprint() == fingerprint {
			return svc, nil
		}
	}
	return nil, nil
}

func (r *ServiceRepository) Create(_ context.Context, _ shared.UnitOfWork, svc *service.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.services {
		if existing.DeviceMAC() == svc.DeviceMAC() &&
			existing.Kind() == svc.Kind() &&
			existing.PortsFingerprint() == svc.PortsFingerprint() {
			return shared.ErrUniqueViolation
		}
	}
	r.services[svc.ServiceID()] = svc
	return nil
}

func (r *ServiceRepository) Update(_ context.Context, _ shared.UnitOfWork, svc *service.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.services[svc.ServiceID()]; !ok {
		return shared.ErrNotFound
	}
	r.services[svc.ServiceID()] = svc
	return nil
}

// DeviceRepository is an in-memory device.Repository keyed by MAC.
type DeviceRepository struct {
	mu      sync.Mutex
	devices map[valueobjects.MACAddress]*device.Device

	CreateErr error
	UpdateErr error
}

var _ device.Repository = (*DeviceRepository)(nil)

func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{devices: make(map[valueobjects.MACAddress]*device.Device)}
}

func (r *DeviceRepository) Seed(dev *device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[dev.MACAddress()] = dev
}

// Get returns the stored device for assertions, or nil.
func (r *DeviceRepository) Get(mac valueobjects.MACAddress) *device.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.devices[mac]
}

func (r *DeviceRepository) FetchAll(_ context.Context, _ shared.UnitOfWork, pagination *device.Pagination) ([]*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*device.Device, 0, len(r.devices))
	for _, dev := range r.devices {
		out = append(out, dev)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MACAddress().String() < out[j].MACAddress().String()
	})

	if pagination != nil && pagination.Limit > 0 {
		offset := (pagination.Page - 1) * pagination.Limit
		if offset < 0 {
			offset = 0
		}
		if offset >= len(out) {
			return nil, nil
		}
		end := offset + pagination.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (r *DeviceRepository) CountAll(context.Context, shared.UnitOfWork) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.devices)), nil
}

func (r *DeviceRepository) FetchOne(_ context.Context, _ shared.UnitOfWork, mac valueobjects.MACAddress) (*device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[mac]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return dev, nil
}

func (r *DeviceRepository) Create(_ context.Context, _ shared.UnitOfWork, dev *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return r.CreateErr
	}
	if _, ok := r.devices[dev.MACAddress()]; ok {
		return shared.ErrUniqueViolation
	}
	r.devices[dev.MACAddress()] = dev
	return nil
}

func (r *DeviceRepository) Update(_ context.Context, _ shared.UnitOfWork, dev *device.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	if _, ok := r.devices[dev.MACAddress()]; !ok {
		return shared.ErrNotFound
	}
	r.devices[dev.MACAddress()] = dev
	return nil
}

// RouterAPI is a canned device.RouterAPI.
type RouterAPI struct {
	Devices      []*device.Device
	Connectivity *device.WANConnectivity
	Stats        *device.WANStats

	DevicesErr      error
	ConnectivityErr error
	StatsErr        error
}

var _ device.RouterAPI = (*RouterAPI)(nil)

func (r *RouterAPI) ListDevices(context.Context) ([]*device.Device, error) {
	return r.Devices, r.DevicesErr
}

func (r *RouterAPI) WANConnectivity(context.Context) (*device.WANConnectivity, error) {
	if r.ConnectivityErr != nil {
		return nil, r.ConnectivityErr
	}
	return r.Connectivity, nil
}

func (r *RouterAPI) WANStats(context.Context) (*device.WANStats, error) {
	if r.StatsErr != nil {
		return nil, r.StatsErr
	}
	return r.Stats, nil
}

// ConnectionManager records broadcast and dispatch calls.
type ConnectionManager struct {
	mu         sync.Mutex
	Broadcasts []agent.Event
	Dispatches map[uuid.UUID][]agent.Event

	BroadcastErr error
}

var _ agent.ConnectionManager = (*ConnectionManager)(nil)

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{Dispatches: make(map[uuid.UUID][]agent.Event)}
}

func (m *ConnectionManager) Register(context.Context, uuid.UUID) (*agent.Receivers, error) {
	return &agent.Receivers{}, nil
}

func (m *ConnectionManager) Unregister(context.Context, uuid.UUID) error { return nil }

func (m *ConnectionManager) Dispatch(_ context.Context, serviceID uuid.UUID, event agent.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dispatches[serviceID] = append(m.Dispatches[serviceID], event)
	return nil
}

func (m *ConnectionManager) Broadcast(_ context.Context, event agent.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BroadcastErr != nil {
		return m.BroadcastErr
	}
	m.Broadcasts = append(m.Broadcasts, event)
	return nil
}

// BroadcastCount returns the number of recorded broadcasts.
func (m *ConnectionManager) BroadcastCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Broadcasts)
}
