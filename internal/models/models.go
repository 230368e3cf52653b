package models

import (
	"time"
)

// Order status values. Only the enumeration is modeled here, transition
// logic lives outside this service.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Slug        string    `gorm:"uniqueIndex;not null"      json:"slug"`
	Name        string    `gorm:"not null"                  json:"name"`
	Description string    `gorm:"not null"                  json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Image       string    `json:"image"`
	Category    string    `gorm:"index"                     json:"category"`
	Stock       uint      `gorm:"not null;default:0"        json:"stock"`
	Rating      float64   `json:"rating,omitempty"`
	Reviews     uint      `json:"reviews,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `json:"role"`
	JTI       string `gorm:"index"           json:"jti"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Order struct {
	ID            uint        `gorm:"primaryKey"         json:"id"`
	UserID        uint        `gorm:"index"              json:"user_id"`
	CustomerName  string      `gorm:"not null"           json:"customer_name"`
	CustomerEmail string      `gorm:"not null"           json:"customer_email"`
	Total         float64     `gorm:"not null"           json:"total"`
	Status        string      `gorm:"not null"           json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem keeps the unit price captured at purchase time. It is never
// re-read from the live product record.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	OrderID   uint    `gorm:"index;not null"              json:"order_id"`
	ProductID uint    `gorm:"not null"                    json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
	Price     float64 `gorm:"not null"                    json:"price"`
	Product   Product `gorm:"foreignKey:ProductID"        json:"product"`
}
