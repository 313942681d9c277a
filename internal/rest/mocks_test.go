package rest

import (
	"context"

	"mshop-be/internal/access"
	"mshop-be/internal/admin"
	"mshop-be/internal/order"
	"mshop-be/internal/payment"
	"mshop-be/internal/product"
	"mshop-be/internal/user"
	"mshop-be/internal/utils"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in user.RegisterInput) (*user.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, q user.ListQuery) ([]*user.User, utils.Pagination, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, utils.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*user.User), args.Get(1).(utils.Pagination), args.Error(2)
}

func (m *MockUserService) ChangeRole(ctx context.Context, a access.Actor, id uint, role access.Role) (*user.User, error) {
	args := m.Called(ctx, a, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, a access.Actor, id uint) error {
	args := m.Called(ctx, a, id)
	return args.Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, q product.ListQuery) ([]*product.Product, utils.Pagination, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, utils.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*product.Product), args.Get(1).(utils.Pagination), args.Error(2)
}

func (m *MockProductService) Get(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, a access.Actor, in product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, a, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, a access.Actor, id uint, in product.UpdateInput) (*product.Product, error) {
	args := m.Called(ctx, a, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, a access.Actor, id uint) error {
	args := m.Called(ctx, a, id)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uint, in order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uint, q order.ListQuery) ([]*order.Order, utils.Pagination, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, utils.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(utils.Pagination), args.Error(2)
}

func (m *MockOrderService) GetOrder(ctx context.Context, a access.Actor, id uint) (*order.Order, error) {
	args := m.Called(ctx, a, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, a access.Actor, id uint, p order.UpdatePatch) (*order.Order, error) {
	args := m.Called(ctx, a, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, a access.Actor, orderID uint) (*payment.IntentResult, error) {
	args := m.Called(ctx, a, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.IntentResult), args.Error(1)
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, a access.Actor, orderID uint, intentID string) (*order.Order, error) {
	args := m.Called(ctx, a, orderID, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockPaymentService) HandleEvent(ctx context.Context, ev *payment.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockPaymentService) Refund(ctx context.Context, a access.Actor, in payment.RefundInput) (*payment.RefundResult, error) {
	args := m.Called(ctx, a, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RefundResult), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Dashboard(ctx context.Context, a access.Actor) (*admin.Dashboard, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Dashboard), args.Error(1)
}

func (m *MockAdminService) ListOrders(ctx context.Context, a access.Actor, q order.ListQuery) ([]*order.Order, utils.Pagination, error) {
	args := m.Called(ctx, a, q)
	if args.Get(0) == nil {
		return nil, utils.Pagination{}, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(utils.Pagination), args.Error(2)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }
