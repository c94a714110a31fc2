package service

import (
	"context"

	"github.com/afip-einvoicing/internal/billing"
	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/submission"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindPending(ctx context.Context) ([]*invoice.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoice.Invoice), args.Error(1)
}

var _ invoice.Repository = (*MockInvoiceRepository)(nil)

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, record *submission.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) FindByInvoiceID(ctx context.Context, invoiceID int64) ([]*submission.Record, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submission.Record), args.Error(1)
}

var _ submission.Repository = (*MockSubmissionRepository)(nil)

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateInvoice(ctx context.Context, inv *invoice.Invoice) (*billing.Authorization, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Authorization), args.Error(1)
}

func (m *MockBillingService) GetVoucherInfo(ctx context.Context, pointOfSale, voucherType int, voucherNumber int64) (*billing.VoucherInfo, error) {
	args := m.Called(ctx, pointOfSale, voucherType, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.VoucherInfo), args.Error(1)
}

var _ billing.Service = (*MockBillingService)(nil)

type MockEventQueue struct {
	mock.Mock
}

func (m *MockEventQueue) Enqueue(event invoice.PendingEvent) {
	m.Called(event)
}

func (m *MockEventQueue) Dequeue() (invoice.PendingEvent, bool) {
	args := m.Called()
	return args.Get(0).(invoice.PendingEvent), args.Bool(1)
}

func (m *MockEventQueue) Size() int {
	args := m.Called()
	return args.Int(0)
}

var _ EventQueue = (*MockEventQueue)(nil)

type MockProcessingLock struct {
	mock.Mock
}

func (m *MockProcessingLock) TryAcquire() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockProcessingLock) Release() {
	m.Called()
}

var _ ProcessingLock = (*MockProcessingLock)(nil)
