package review

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/warodomh/marketplace/internal/models"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	buyer   models.User
	seller  models.Seller
	product models.Product
	order   models.Order
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Seller{}, &models.Product{},
		&models.Order{}, &models.OrderItem{}, &models.Review{},
	))

	f := &fixture{db: db, svc: &Service{DB: db}}

	f.buyer = models.User{Name: "buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.buyer).Error)

	owner := models.User{Name: "owner", Email: "owner@example.com", PasswordHash: "x", Role: models.RoleSeller}
	require.NoError(t, db.Create(&owner).Error)
	f.seller = models.Seller{UserID: owner.ID, ShopName: "shop"}
	require.NoError(t, db.Create(&f.seller).Error)

	f.product = models.Product{SellerID: f.seller.ID, Name: "durian", Price: 120, Stock: 3, IsActive: true}
	require.NoError(t, db.Create(&f.product).Error)

	f.order = models.Order{
		UserID: f.buyer.ID, OrderNumber: "ORD-20260901-0001",
		TotalAmount: 120, Status: models.OrderDelivered, PaymentStatus: models.PaymentPaid,
	}
	require.NoError(t, db.Create(&f.order).Error)
	require.NoError(t, db.Create(&models.OrderItem{
		OrderID: f.order.ID, ProductID: f.product.ID, SellerID: f.seller.ID,
		Quantity: 1, UnitPrice: 120, TotalPrice: 120,
	}).Error)
	return f
}

func TestCreateUpdatesAggregates(t *testing.T) {
	f := newFixture(t)

	review, err := f.svc.Create(context.Background(), f.buyer.ID, f.product.ID, f.order.ID, 4, "fresh", "")
	require.NoError(t, err)
	require.Equal(t, 4, review.Rating)

	var p models.Product
	require.NoError(t, f.db.First(&p, f.product.ID).Error)
	require.Equal(t, 4.0, p.Rating)
	require.Equal(t, 1, p.TotalReviews)

	var s models.Seller
	require.NoError(t, f.db.First(&s, f.seller.ID).Error)
	require.Equal(t, 4.0, s.Rating)
}

func TestCreateGates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("rating out of range", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.buyer.ID, f.product.ID, f.order.ID, 6, "", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("someone else's order", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.buyer.ID+50, f.product.ID, f.order.ID, 5, "", "")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("order not delivered", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", f.order.ID).
			Update("status", models.OrderShipping).Error)
		_, err := f.svc.Create(ctx, f.buyer.ID, f.product.ID, f.order.ID, 5, "", "")
		require.ErrorIs(t, err, ErrValidation)
		require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", f.order.ID).
			Update("status", models.OrderDelivered).Error)
	})

	t.Run("product not in order", func(t *testing.T) {
		other := models.Product{SellerID: f.seller.ID, Name: "rambutan", Price: 30, Stock: 5, IsActive: true}
		require.NoError(t, f.db.Create(&other).Error)
		_, err := f.svc.Create(ctx, f.buyer.ID, other.ID, f.order.ID, 5, "", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate review", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.buyer.ID, f.product.ID, f.order.ID, 5, "", "")
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, f.buyer.ID, f.product.ID, f.order.ID, 3, "", "")
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	review, err := f.svc.Create(ctx, f.buyer.ID, f.product.ID, f.order.ID, 2, "meh", "")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, review.ID, f.buyer.ID+1, 5, "")
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.Update(ctx, review.ID, f.buyer.ID, 5, "grew on me")
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)

	var p models.Product
	require.NoError(t, f.db.First(&p, f.product.ID).Error)
	require.Equal(t, 5.0, p.Rating)

	err = f.svc.Delete(ctx, review.ID, f.buyer.ID+1, models.RoleCustomer)
	require.ErrorIs(t, err, ErrForbidden)

	// An admin may remove any review.
	require.NoError(t, f.svc.Delete(ctx, review.ID, f.buyer.ID+1, models.RoleAdmin))

	require.NoError(t, f.db.First(&p, f.product.ID).Error)
	require.Equal(t, 0.0, p.Rating)
	require.Equal(t, 0, p.TotalReviews)
}
