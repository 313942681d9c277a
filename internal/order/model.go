package order

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const DefaultPaymentMethod = "card"

type Address struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a Address) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return fmt.Errorf("address is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Value stores the address as JSONB.
func (a Address) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("address: unsupported column type")
	}
}

type Item struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Owner is the slice of the user record returned alongside an order.
type Owner struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID                uint            `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	UserID            uint            `json:"userId"`
	User              *Owner          `json:"user,omitempty"`
	Items             []Item          `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Shipping          decimal.Decimal `json:"shipping"`
	Discount          decimal.Decimal `json:"discount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentID         *string         `json:"paymentId,omitempty"`
	ShippingAddress   Address         `json:"shippingAddress"`
	BillingAddress    Address         `json:"billingAddress"`
	Notes             string          `json:"notes"`
	TrackingNumber    *string         `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	CancelledAt       *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy       *uint           `json:"cancelledBy,omitempty"`
	CancelReason      *string         `json:"cancelReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// CanCancel reports whether the order is still early enough to be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

type CreateOrderInput struct {
	Items           []Item   `json:"items"`
	ShippingAddress *Address `json:"shippingAddress"`
	BillingAddress  *Address `json:"billingAddress"`
	Notes           string   `json:"notes"`
	PaymentMethod   string   `json:"paymentMethod"`
}

// UpdatePatch carries only the fields the caller sent.
type UpdatePatch struct {
	Status         *OrderStatus `json:"status"`
	TrackingNumber *string      `json:"trackingNumber"`
	Notes          *string      `json:"notes"`
}

func (p UpdatePatch) empty() bool {
	return p.Status == nil && p.TrackingNumber == nil && p.Notes == nil
}

type ListFilter struct {
	UserID *uint
	Status *OrderStatus
	Limit  int
	Offset int
}

type ListQuery struct {
	Status string
	Page   int
	Limit  int
}

// PaymentTransition moves payment_status to To, but only while the current
// value is one of From. Optional fields are written in the same statement.
type PaymentTransition struct {
	From         []PaymentStatus
	To           PaymentStatus
	PaymentID    *string
	Status       *OrderStatus
	CancelledBy  *uint
	CancelReason *string
}
