package service

import (
	"context"
	"testing"
	"time"

	"github.com/laundrybox/reconciler/internal/domain/order"
	"github.com/laundrybox/reconciler/internal/domain/paymentcollection"
	ierr "github.com/laundrybox/reconciler/internal/errors"
	"github.com/laundrybox/reconciler/internal/testutil"
	"github.com/laundrybox/reconciler/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CaptureServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CaptureService
}

func TestCaptureService(t *testing.T) {
	suite.Run(t, new(CaptureServiceSuite))
}

func (s *CaptureServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCaptureService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *CaptureServiceSuite) createOrder(cartID string, paymentIntentID *string, status types.OrderPaymentStatus) *order.Order {
	o := &order.Order{
		ID:              s.GetUUID(),
		CartID:          cartID,
		CustomerID:      "cus_1",
		PaymentStatus:   status,
		PaymentIntentID: paymentIntentID,
		Total:           decimal.NewFromInt(25),
		CurrencyCode:    "eur",
		CreatedAt:       s.GetNow(),
		UpdatedAt:       s.GetNow(),
	}
	s.Require().NoError(s.GetStores().OrderRepo.Create(s.GetContext(), o))
	return o
}

func (s *CaptureServiceSuite) seedCollection() *paymentcollection.PaymentCollection {
	c := &paymentcollection.PaymentCollection{
		ID:           "paycol_1",
		Status:       "authorized",
		Amount:       decimal.NewFromInt(40),
		CurrencyCode: "eur",
		CreatedAt:    s.GetNow(),
		UpdatedAt:    s.GetNow(),
		Payments: []*paymentcollection.Payment{
			{ID: "pay_1", GatewayPaymentID: "pi_other", Amount: decimal.NewFromInt(15), CurrencyCode: "eur"},
			{ID: "pay_2", GatewayPaymentID: "pi_1", Amount: decimal.NewFromInt(25), CurrencyCode: "eur"},
		},
	}
	s.Require().NoError(s.GetStores().PaymentCollectionRepo.AddCollection(s.GetContext(), c))
	return c
}

func (s *CaptureServiceSuite) TestCapturesOrderPaymentOnce() {
	ctx := s.GetContext()
	o := s.createOrder("cart_1", lo.ToPtr("pi_1"), types.OrderPaymentStatusAwaiting)

	s.Require().NoError(s.service.CapturePaymentIfNecessary(ctx, "cart_1"))
	s.Require().NoError(s.service.CapturePaymentIfNecessary(ctx, "cart_1"))

	stored, err := s.GetStores().OrderRepo.Get(ctx, o.ID)
	s.Require().NoError(err)
	s.True(stored.IsCaptured())
	s.Equal(1, s.GetGateway().CaptureCount("pi_1"))
}

func (s *CaptureServiceSuite) TestNoOrderIsNoop() {
	s.Require().NoError(s.service.CapturePaymentIfNecessary(s.GetContext(), "cart_missing"))
	s.Equal(0, s.GetGateway().CaptureCount("pi_1"))
}

func (s *CaptureServiceSuite) TestAlreadyCapturedOrderIsNoop() {
	s.createOrder("cart_1", lo.ToPtr("pi_1"), types.OrderPaymentStatusCaptured)

	s.Require().NoError(s.service.CapturePaymentIfNecessary(s.GetContext(), "cart_1"))
	s.Equal(0, s.GetGateway().CaptureCount("pi_1"))
}

func (s *CaptureServiceSuite) TestOrderWithoutPaymentIntent() {
	s.createOrder("cart_1", nil, types.OrderPaymentStatusAwaiting)

	err := s.service.CapturePaymentIfNecessary(s.GetContext(), "cart_1")
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CaptureServiceSuite) TestGatewayFailureLeavesOrderAwaiting() {
	ctx := s.GetContext()
	o := s.createOrder("cart_1", lo.ToPtr("pi_1"), types.OrderPaymentStatusAwaiting)
	s.GetGateway().CaptureErr = ierr.NewError("card declined").Mark(ierr.ErrHTTPClient)

	err := s.service.CapturePaymentIfNecessary(ctx, "cart_1")
	s.Require().Error(err)
	s.True(ierr.IsHTTPClient(err))

	stored, err := s.GetStores().OrderRepo.Get(ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(types.OrderPaymentStatusAwaiting, stored.PaymentStatus)
}

func (s *CaptureServiceSuite) TestCapturesMatchingCollectionPayment() {
	ctx := s.GetContext()
	s.seedCollection()

	err := s.GetDB().WithTx(ctx, func(ctx context.Context) error {
		return s.service.CapturePaymentCollectionIfNecessary(ctx, "paycol_1", "pi_1")
	})
	s.Require().NoError(err)

	captured, err := s.GetStores().PaymentCollectionRepo.GetPayment(ctx, "pay_2")
	s.Require().NoError(err)
	s.True(captured.IsCaptured())

	other, err := s.GetStores().PaymentCollectionRepo.GetPayment(ctx, "pay_1")
	s.Require().NoError(err)
	s.False(other.IsCaptured())

	s.Equal(1, s.GetGateway().CaptureCount("pi_1"))
	s.Equal(0, s.GetGateway().CaptureCount("pi_other"))
	s.Equal(1, s.GetDB().TxCount())
	s.Equal(1, s.GetDB().SavepointCount())
}

func (s *CaptureServiceSuite) TestCollectionCaptureIsIdempotent() {
	ctx := s.GetContext()
	s.seedCollection()

	s.Require().NoError(s.service.CapturePaymentCollectionIfNecessary(ctx, "paycol_1", "pi_1"))
	first, err := s.GetStores().PaymentCollectionRepo.GetPayment(ctx, "pay_2")
	s.Require().NoError(err)

	s.Require().NoError(s.service.CapturePaymentCollectionIfNecessary(ctx, "paycol_1", "pi_1"))
	second, err := s.GetStores().PaymentCollectionRepo.GetPayment(ctx, "pay_2")
	s.Require().NoError(err)

	s.Equal(1, s.GetGateway().CaptureCount("pi_1"))
	s.True(first.CapturedAt.Equal(*second.CapturedAt))
}

func (s *CaptureServiceSuite) TestCollectionNothingToCapture() {
	ctx := s.GetContext()

	s.Require().NoError(s.service.CapturePaymentCollectionIfNecessary(ctx, "paycol_missing", "pi_1"))

	s.seedCollection()
	s.Require().NoError(s.service.CapturePaymentCollectionIfNecessary(ctx, "paycol_1", "pi_unknown"))

	s.Equal(0, s.GetGateway().CaptureCount("pi_1"))
	s.Equal(0, s.GetDB().SavepointCount()+s.GetDB().TxCount())
}

func (s *CaptureServiceSuite) TestCapturedAtIsSetOnce() {
	ctx := s.GetContext()
	s.seedCollection()

	earlier := time.Now().UTC().Add(-time.Minute)
	svc := NewPaymentCollectionService(newTestServiceParams(&s.BaseServiceTestSuite))

	p, err := svc.Capture(ctx, "pay_1")
	s.Require().NoError(err)
	s.NotNil(p.CapturedAt)

	updated, err := s.GetStores().PaymentCollectionRepo.MarkPaymentCaptured(ctx, "pay_1", earlier)
	s.Require().NoError(err)
	s.False(updated)

	stored, err := s.GetStores().PaymentCollectionRepo.GetPayment(ctx, "pay_1")
	s.Require().NoError(err)
	s.True(stored.CapturedAt.Equal(*p.CapturedAt))
}
