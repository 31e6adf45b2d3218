package models

import (
	"time"
)

// Role values stored on User.Role.
const (
	RoleAdmin    = "Admin"
	RoleSeller   = "Seller"
	RoleCustomer = "Customer"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	ImageURL     string    `json:"image_url"`
	Role         string    `gorm:"not null;default:Customer" json:"role"`
	IsActive     bool      `gorm:"default:true"              json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	Token     string `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	Role      string `gorm:"not null"             json:"role"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

type Seller struct {
	ID              uint      `gorm:"primaryKey"           json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	ShopName        string    `gorm:"not null"             json:"shop_name"`
	ShopDescription string    `json:"shop_description"`
	ShopImageURL    string    `json:"shop_image_url"`
	LogoURL         string    `json:"logo_url"`
	QRCodeURL       string    `json:"qr_code_url"`
	PhoneNumber     string    `json:"phone_number"`
	Address         string    `json:"address"`
	Rating          float64   `gorm:"default:0"            json:"rating"`
	TotalSales      int       `gorm:"default:0"            json:"total_sales"`
	IsVerified      bool      `gorm:"default:false"        json:"is_verified"`
	IsActive        bool      `gorm:"default:true"         json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey"   json:"id"`
	Name        string    `gorm:"not null"     json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID           uint      `gorm:"primaryKey"     json:"id"`
	SellerID     uint      `gorm:"index;not null" json:"seller_id"`
	CategoryID   uint      `gorm:"index"          json:"category_id"`
	Name         string    `gorm:"not null"       json:"name"`
	Description  string    `json:"description"`
	Price        float64   `gorm:"not null"       json:"price"`
	Stock        int       `gorm:"not null;default:0" json:"stock"`
	Unit         string    `json:"unit"`
	ImageURL     string    `json:"image_url"`
	Rating       float64   `gorm:"default:0"      json:"rating"`
	TotalReviews int       `gorm:"default:0"      json:"total_reviews"`
	IsActive     bool      `gorm:"default:true"   json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                 json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity > 0"               json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order lifecycle statuses. Transitions are validated centrally by the
// order service; the raw column stays a string for schema compatibility.
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
	OrderPreparing = "Preparing"
	OrderShipping  = "Shipping"
	OrderDelivered = "Delivered"
	OrderCancelled = "Cancelled"
)

// Payment statuses carried on Order.PaymentStatus and Payment.Status.
const (
	PaymentPending  = "Pending"
	PaymentPaid     = "Paid"
	PaymentRefunded = "Refunded"
)

type Order struct {
	ID            uint        `gorm:"primaryKey"               json:"id"`
	UserID        uint        `gorm:"index;not null"           json:"user_id"`
	OrderNumber   string      `gorm:"uniqueIndex;not null"     json:"order_number"`
	TotalAmount   float64     `gorm:"not null"                 json:"total_amount"`
	Status        string      `gorm:"not null;default:Pending" json:"status"`
	PaymentStatus string      `gorm:"not null;default:Pending" json:"payment_status"`
	Note          string      `json:"note"`
	OrderDate     time.Time   `json:"order_date"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID"       json:"items,omitempty"`
	Payment       *Payment    `gorm:"foreignKey:OrderID"       json:"payment,omitempty"`
}

type OrderItem struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	SellerID   uint      `gorm:"index;not null" json:"seller_id"`
	Quantity   uint      `gorm:"not null"       json:"quantity"`
	UnitPrice  float64   `gorm:"not null"       json:"unit_price"`
	TotalPrice float64   `gorm:"not null"       json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Payment struct {
	ID            uint       `gorm:"primaryKey"               json:"id"`
	OrderID       uint       `gorm:"uniqueIndex;not null"     json:"order_id"`
	Method        string     `json:"method"`
	Amount        float64    `gorm:"not null"                 json:"amount"`
	Status        string     `gorm:"not null;default:Pending" json:"status"`
	ReferenceCode string     `json:"reference_code"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Settlement statuses carried on SellerRevenue.Status.
const (
	SettlementPending = "Pending"
	SettlementSettled = "Settled"
	SettlementFailed  = "Failed"
)

type SellerRevenue struct {
	ID               uint       `gorm:"primaryKey"                                    json:"id"`
	OrderID          uint       `gorm:"not null;uniqueIndex:idx_revenue_order_seller" json:"order_id"`
	SellerID         uint       `gorm:"not null;uniqueIndex:idx_revenue_order_seller" json:"seller_id"`
	GrossAmount      float64    `gorm:"not null"                 json:"gross_amount"`
	CommissionRate   float64    `gorm:"default:0"                json:"commission_rate"`
	CommissionAmount float64    `gorm:"default:0"                json:"commission_amount"`
	NetAmount        float64    `gorm:"not null"                 json:"net_amount"`
	Status           string     `gorm:"not null;default:Pending" json:"status"`
	SettledAt        *time.Time `json:"settled_at,omitempty"`
	SettlementNote   string     `json:"settlement_note"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	OrderID   uint      `gorm:"index"          json:"order_id"`
	Rating    int       `gorm:"not null"       json:"rating"`
	Comment   string    `json:"comment"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Address struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Label      string    `json:"label"`
	Line1      string    `gorm:"not null"       json:"line1"`
	Line2      string    `json:"line2"`
	District   string    `json:"district"`
	Province   string    `json:"province"`
	PostalCode string    `json:"postal_code"`
	Phone      string    `json:"phone"`
	IsDefault  bool      `gorm:"default:false"  json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Location struct {
	ID          uint      `gorm:"primaryKey"           json:"id"`
	LocationID  string    `gorm:"uniqueIndex;not null" json:"location_id"`
	SellerID    uint      `gorm:"index"                json:"seller_id"`
	Name        string    `gorm:"not null"             json:"name"`
	Description string    `json:"description"`
	Type        string    `gorm:"default:Store"        json:"type"`
	Latitude    float64   `gorm:"not null"             json:"latitude"`
	Longitude   float64   `gorm:"not null"             json:"longitude"`
	Address     string    `json:"address"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `gorm:"default:true"         json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Banner struct {
	ID           uint      `gorm:"primaryKey"   json:"id"`
	Title        string    `gorm:"not null"     json:"title"`
	ImageURL     string    `json:"image_url"`
	LinkURL      string    `json:"link_url"`
	DisplayOrder int       `gorm:"default:0"    json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Culture struct {
	ID          uint      `gorm:"primaryKey"   json:"id"`
	Name        string    `gorm:"not null"     json:"name"`
	Description string    `json:"description"`
	Province    string    `json:"province"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
