package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"communityshare-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockResourceRepo
type MockResourceRepo struct {
	mock.Mock
}

func (m *MockResourceRepo) Create(ctx context.Context, res *domain.Resource) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}
func (m *MockResourceRepo) GetByID(ctx context.Context, id int32) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}
func (m *MockResourceRepo) Update(ctx context.Context, res *domain.Resource) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}
func (m *MockResourceRepo) ListByStatus(ctx context.Context, status domain.ResourceStatus) ([]domain.Resource, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) CreateLocked(ctx context.Context, rsv *domain.Reservation) error {
	args := m.Called(ctx, rsv)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) Update(ctx context.Context, rsv *domain.Reservation) error {
	args := m.Called(ctx, rsv)
	return args.Error(0)
}
func (m *MockReservationRepo) ListByUser(ctx context.Context, userID int32, status domain.ReservationStatus, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListBlockingInRange(ctx context.Context, resourceID int32, rangeStart, rangeEnd time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, resourceID, rangeStart, rangeEnd)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) HasBlockingOverlap(ctx context.Context, resourceID int32, startsAt, endsAt time.Time, excludeID int32) (bool, error) {
	args := m.Called(ctx, resourceID, startsAt, endsAt, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockUsageLogRepo
type MockUsageLogRepo struct {
	mock.Mock
}

func (m *MockUsageLogRepo) CreateWithCheckOut(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error {
	args := m.Called(ctx, log, rsv)
	return args.Error(0)
}
func (m *MockUsageLogRepo) UpdateWithCheckIn(ctx context.Context, log *domain.UsageLog, rsv *domain.Reservation) error {
	args := m.Called(ctx, log, rsv)
	return args.Error(0)
}
func (m *MockUsageLogRepo) GetByID(ctx context.Context, id int32) (*domain.UsageLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}
func (m *MockUsageLogRepo) GetByReservation(ctx context.Context, reservationID int32) (*domain.UsageLog, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLog), args.Error(1)
}
func (m *MockUsageLogRepo) Update(ctx context.Context, log *domain.UsageLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
func (m *MockUsageLogRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.UsageLog, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.UsageLog), args.Get(1).(int32), args.Error(2)
}
func (m *MockUsageLogRepo) ListBillableUninvoiced(ctx context.Context, periodStart, periodEnd time.Time) ([]domain.UsageLog, error) {
	args := m.Called(ctx, periodStart, periodEnd)
	return args.Get(0).([]domain.UsageLog), args.Error(1)
}
func (m *MockUsageLogRepo) ListBillableUninvoicedByUser(ctx context.Context, userID int32, periodStart, periodEnd time.Time) ([]domain.UsageLog, error) {
	args := m.Called(ctx, userID, periodStart, periodEnd)
	return args.Get(0).([]domain.UsageLog), args.Error(1)
}

// MockInvoiceRepo
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) CreateWithItems(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}
func (m *MockInvoiceRepo) GetByID(ctx context.Context, id int32) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}
func (m *MockInvoiceRepo) AddItem(ctx context.Context, item *domain.InvoiceItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockInvoiceRepo) RemoveItem(ctx context.Context, invoiceID, itemID int32) error {
	args := m.Called(ctx, invoiceID, itemID)
	return args.Error(0)
}
func (m *MockInvoiceRepo) ListItems(ctx context.Context, invoiceID int32) ([]domain.InvoiceItem, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]domain.InvoiceItem), args.Error(1)
}
func (m *MockInvoiceRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Invoice, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Invoice), args.Get(1).(int32), args.Error(2)
}
func (m *MockInvoiceRepo) ListSentPastDue(ctx context.Context, now time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReservationCreated(ctx context.Context, email, name, resourceName string, startsAt, endsAt time.Time, pending bool) error {
	args := m.Called(ctx, email, name, resourceName, startsAt, endsAt, pending)
	return args.Error(0)
}
func (m *MockEmailService) SendReservationConfirmed(ctx context.Context, email, name, resourceName string, startsAt time.Time) error {
	args := m.Called(ctx, email, name, resourceName, startsAt)
	return args.Error(0)
}
func (m *MockEmailService) SendReservationCancelled(ctx context.Context, email, name, resourceName, reason string) error {
	args := m.Called(ctx, email, name, resourceName, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendUsageVerified(ctx context.Context, email, name, resourceName string) error {
	args := m.Called(ctx, email, name, resourceName)
	return args.Error(0)
}
func (m *MockEmailService) SendUsageDisputed(ctx context.Context, email, name, resourceName, adminNotes string) error {
	args := m.Called(ctx, email, name, resourceName, adminNotes)
	return args.Error(0)
}
func (m *MockEmailService) SendInvoiceSent(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal, dueDate *time.Time) error {
	args := m.Called(ctx, email, name, invoiceNumber, total, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendInvoiceOverdue(ctx context.Context, email, name, invoiceNumber string, total decimal.Decimal) error {
	args := m.Called(ctx, email, name, invoiceNumber, total)
	return args.Error(0)
}
