package admin

import (
	"mshop-be/internal/order"

	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalUsers     int64                       `json:"totalUsers"`
	TotalProducts  int64                       `json:"totalProducts"`
	TotalOrders    int64                       `json:"totalOrders"`
	TotalRevenue   decimal.Decimal             `json:"totalRevenue"`
	PendingOrders  int64                       `json:"pendingOrders"`
	OrdersByStatus map[order.OrderStatus]int64 `json:"ordersByStatus"`
}

type Dashboard struct {
	Stats
	RecentOrders []*order.Order `json:"recentOrders"`
}
