package review

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/warodomh/marketplace/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

type Service struct {
	DB *gorm.DB
}

// Create stores a review for a product the user actually received: the
// referenced order must belong to the user, be delivered, and contain the
// product. One review per (user, product, order).
func (s *Service) Create(ctx context.Context, userID uint, productID, orderID uint, rating int, comment, imageURL string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
		if order.Status != models.OrderDelivered {
			return fmt.Errorf("%w: order is not delivered yet", ErrValidation)
		}
		contains := false
		for _, item := range order.Items {
			if item.ProductID == productID {
				contains = true
				break
			}
		}
		if !contains {
			return fmt.Errorf("%w: product %d is not part of order %d", ErrValidation, productID, orderID)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND product_id = ? AND order_id = ?", userID, productID, orderID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: product already reviewed for this order", ErrValidation)
		}

		review = models.Review{
			ProductID: productID,
			UserID:    userID,
			OrderID:   orderID,
			Rating:    rating,
			Comment:   comment,
			ImageURL:  imageURL,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeProductRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Update edits the caller's own review and refreshes the product's
// aggregate rating.
func (s *Service) Update(ctx context.Context, reviewID, userID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
			}
			return err
		}
		if review.UserID != userID {
			return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
		}
		review.Rating = rating
		review.Comment = comment
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeProductRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *Service) Delete(ctx context.Context, reviewID, userID uint, role string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
			}
			return err
		}
		if review.UserID != userID && role != models.RoleAdmin {
			return fmt.Errorf("%w: review belongs to another user", ErrForbidden)
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recomputeProductRating(tx, review.ProductID)
	})
}

func (s *Service) ListByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// recomputeProductRating rewrites the product's rating and review count
// from the surviving review rows, then folds the product averages into
// its seller's rating.
func recomputeProductRating(tx *gorm.DB, productID uint) error {
	type agg struct {
		Avg   float64
		Count int64
	}
	var a agg
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&a).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"rating":        a.Avg,
			"total_reviews": a.Count,
		}).Error; err != nil {
		return err
	}

	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return err
	}

	var sellerAvg float64
	if err := tx.Model(&models.Product{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("seller_id = ? AND total_reviews > 0", product.SellerID).
		Scan(&sellerAvg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Seller{}).
		Where("id = ?", product.SellerID).
		Update("rating", sellerAvg).Error
}
