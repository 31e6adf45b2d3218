package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
)

var (
	ErrValidation    = errors.New("validation")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrStateConflict = errors.New("state conflict")

	// Placement failures, each wrapping ErrValidation so callers can
	// branch coarsely or precisely.
	ErrProductNotFound    = fmt.Errorf("%w: product not found", ErrValidation)
	ErrProductUnavailable = fmt.Errorf("%w: product unavailable", ErrValidation)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", ErrValidation)
)

// orderNumberAttempts bounds the regenerate-and-reinsert loop used when a
// concurrently placed order grabbed the same random suffix.
const orderNumberAttempts = 5

// Line is one requested (product, quantity) pair of an order.
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type Service struct {
	DB *gorm.DB

	// CommissionRate is the platform cut in percent applied to every
	// seller revenue row, resolved once from configuration at startup.
	CommissionRate float64
}

// allowedTransitions is the closed status machine. A target status is legal
// only when listed for the order's current status, regardless of which
// endpoint requested the change.
var allowedTransitions = map[string][]string{
	models.OrderPending:   {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderShipping},
	models.OrderShipping:  {models.OrderDelivered},
	models.OrderDelivered: {},
	models.OrderCancelled: {},
}

func transitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func validStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// PlaceOrder validates the whole batch, then persists the order header,
// its items, a pending payment stub and one revenue row per seller,
// decrements stock and clears matching cart rows — all inside a single
// transaction. Any failure rolls the whole thing back.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, lines []Line, note, method string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}

	var order models.Order

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productIDs := make([]uint, 0, len(lines))
		for _, l := range lines {
			productIDs = append(productIDs, l.ProductID)
		}

		var products []models.Product
		if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uint]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		// Whole-batch validation before any write.
		var total float64
		for _, l := range lines {
			p, ok := byID[l.ProductID]
			if !ok {
				return fmt.Errorf("%w (id %d)", ErrProductNotFound, l.ProductID)
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %q", ErrProductUnavailable, p.Name)
			}
			if p.Stock < int(l.Quantity) {
				return fmt.Errorf("%w for %q: available %d, requested %d",
					ErrInsufficientStock, p.Name, p.Stock, l.Quantity)
			}
			total += p.Price * float64(l.Quantity)
		}

		now := time.Now()
		order = models.Order{
			UserID:        userID,
			TotalAmount:   total,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
			Note:          note,
			OrderDate:     now,
		}
		if err := insertWithOrderNumber(tx, &order); err != nil {
			return err
		}

		for _, l := range lines {
			p := byID[l.ProductID]
			item := models.OrderItem{
				OrderID:    order.ID,
				ProductID:  p.ID,
				SellerID:   p.SellerID,
				Quantity:   l.Quantity,
				UnitPrice:  p.Price,
				TotalPrice: p.Price * float64(l.Quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			// Guarded decrement; the row lock serializes concurrent
			// placements against the same product.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", p.ID, l.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w for %q", ErrInsufficientStock, p.Name)
			}
		}

		payment := models.Payment{
			OrderID: order.ID,
			Method:  method,
			Amount:  total,
			Status:  models.PaymentPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// One revenue row per seller in the order.
		grossBySeller := make(map[uint]float64)
		for _, l := range lines {
			p := byID[l.ProductID]
			grossBySeller[p.SellerID] += p.Price * float64(l.Quantity)
		}
		for sellerID, gross := range grossBySeller {
			commission := gross * s.CommissionRate / 100
			revenue := models.SellerRevenue{
				OrderID:          order.ID,
				SellerID:         sellerID,
				GrossAmount:      gross,
				CommissionRate:   s.CommissionRate,
				CommissionAmount: commission,
				NetAmount:        gross - commission,
				Status:           models.SettlementPending,
			}
			if err := tx.Create(&revenue).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ? AND product_id IN ?", userID, productIDs).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.GetByID(ctx, order.ID)
}

// insertWithOrderNumber creates the order header, regenerating the random
// suffix and re-attempting the insert whenever the unique index on the
// order number rejects a concurrent duplicate. Each attempt runs under a
// savepoint so a rejected insert does not poison the enclosing
// transaction on postgres.
func insertWithOrderNumber(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = newOrderNumber()
		if err := tx.SavePoint("order_insert").Error; err != nil {
			return err
		}
		err := tx.Create(order).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := tx.RollbackTo("order_insert").Error; err != nil {
			return err
		}
		order.ID = 0
	}
	return fmt.Errorf("%w: could not allocate a unique order number", ErrStateConflict)
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%04d", time.Now().Format("20060102"), 1000+rand.Intn(9000))
}

func (s *Service) GetByID(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) GetByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// GetBySeller returns the order items belonging to one seller, newest
// order first.
func (s *Service) GetBySeller(ctx context.Context, sellerID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.DB.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ?", sellerID).
		Order("orders.created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *Service) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Cancel aborts an order owned by userID, restoring each item's quantity
// onto its product. Only Pending and Confirmed orders may be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID, userID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if order.UserID != userID {
			return fmt.Errorf("%w: order belongs to another user", ErrForbidden)
		}
		if order.Status != models.OrderPending && order.Status != models.OrderConfirmed {
			return fmt.Errorf("%w: order cannot be cancelled in status %s", ErrStateConflict, order.Status)
		}

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}

		return tx.Model(&order).Updates(map[string]any{
			"status":     models.OrderCancelled,
			"updated_at": time.Now(),
		}).Error
	})
}

// UpdateStatus moves an order through the transition table. The caller must
// be an admin, or a seller owning at least one item in the order.
func (s *Service) UpdateStatus(ctx context.Context, orderID, userID uint, role, status string) error {
	if !validStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return err
	}

	if role != models.RoleAdmin {
		var seller models.Seller
		if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&seller).Error; err != nil {
			return fmt.Errorf("%w: no permission to update this order", ErrForbidden)
		}
		owns := false
		for _, item := range order.Items {
			if item.SellerID == seller.ID {
				owns = true
				break
			}
		}
		if !owns {
			return fmt.Errorf("%w: no permission to update this order", ErrForbidden)
		}
	}

	if !transitionAllowed(order.Status, status) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrStateConflict, order.Status, status)
	}

	return s.DB.WithContext(ctx).Model(&order).Updates(map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

// ConfirmPayment marks the order's payment stub as paid and flips the
// order's payment status. Admin only; payment gateways are out of scope.
func (s *Service) ConfirmPayment(ctx context.Context, orderID uint, referenceCode string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("order_id = ?", orderID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment for order %d", ErrNotFound, orderID)
			}
			return err
		}
		if payment.Status == models.PaymentPaid {
			return fmt.Errorf("%w: payment already confirmed", ErrStateConflict)
		}

		now := time.Now()
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":         models.PaymentPaid,
			"reference_code": referenceCode,
			"paid_at":        &now,
			"updated_at":     now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]any{
				"payment_status": models.PaymentPaid,
				"updated_at":     now,
			}).Error
	})
}
