package services

import (
	"context"
	"sort"
	"time"

	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportService struct {
	db  *gorm.DB
	now Clock
}

func NewReportService(db *gorm.DB, now Clock) *ReportService {
	return &ReportService{db: db, now: now}
}

// SalesReportResult holds revenue and order count for a date range
type SalesReportResult struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCount   int64           `json:"total_count"`
}

// Summary totals sales between start and end, both inclusive.
func (s *ReportService) Summary(ctx context.Context, start, end time.Time) (*SalesReportResult, error) {
	var row struct {
		Revenue decimal.Decimal
		Count   int64
	}
	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := s.db.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS count").
		Where("sold_at BETWEEN ? AND ?", start, end).
		Scan(&row).Error
	if err != nil {
		return nil, apperr.Persistence("failed to calculate sales report", err)
	}
	return &SalesReportResult{TotalRevenue: row.Revenue, TotalCount: row.Count}, nil
}

type CategorySales struct {
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// DashboardStats is the register's headline numbers for a period.
type DashboardStats struct {
	Period            Period          `json:"period"`
	TotalSales        int64           `json:"total_sales"`
	TotalValue        decimal.Decimal `json:"total_value"`
	AverageTicket     decimal.Decimal `json:"average_ticket"`
	DistinctCustomers int64           `json:"distinct_customers"`
	TopCategories     []CategorySales `json:"top_categories"`
}

const topCategoryCount = 5

func (s *ReportService) Dashboard(ctx context.Context, period Period) (*DashboardStats, error) {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if start, ok := period.Since(s.now()); ok {
		q = q.Where("sold_at >= ?", start)
	}

	var row struct {
		Count     int64
		Value     decimal.Decimal
		Customers int64
	}
	err := q.Session(&gorm.Session{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS value, COUNT(DISTINCT customer_name) AS customers").
		Scan(&row).Error
	if err != nil {
		return nil, apperr.Persistence("failed to calculate sales stats", err)
	}

	var sales []models.Sale
	if err := q.Session(&gorm.Session{}).Select("items").Find(&sales).Error; err != nil {
		return nil, apperr.Persistence("failed to load sale items", err)
	}

	stats := &DashboardStats{
		Period:            period,
		TotalSales:        row.Count,
		TotalValue:        row.Value,
		AverageTicket:     decimal.Zero,
		DistinctCustomers: row.Customers,
		TopCategories:     topCategories(sales, topCategoryCount),
	}
	if row.Count > 0 {
		stats.AverageTicket = row.Value.Div(decimal.NewFromInt(row.Count)).Round(2)
	}
	return stats, nil
}

// topCategories ranks item categories by value sold, keeping the first n.
func topCategories(sales []models.Sale, n int) []CategorySales {
	byName := map[string]*CategorySales{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			name := item.Category
			if name == "" {
				name = "Uncategorized"
			}
			cat, ok := byName[name]
			if !ok {
				cat = &CategorySales{Category: name, Value: decimal.Zero}
				byName[name] = cat
			}
			cat.Quantity += item.Quantity
			cat.Value = cat.Value.Add(item.Total)
		}
	}

	out := make([]CategorySales, 0, len(byName))
	for _, cat := range byName {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ValuationItem is one product line of the stock valuation.
type ValuationItem struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// CategoryGroup represents one category table of the valuation (e.g., "Bebidas")
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// StockValuation prices the stock on hand at the current selling price, grouped by category.
func (s *ReportService) StockValuation(ctx context.Context) (*ValuationResponse, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, apperr.Persistence("failed to fetch inventory", err)
	}

	response := &ValuationResponse{Categories: []CategoryGroup{}, GrandTotal: decimal.Zero}
	groupedMap := make(map[string]*CategoryGroup)
	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		group, exists := groupedMap[catName]
		if !exists {
			group = &CategoryGroup{CategoryName: catName, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			groupedMap[catName] = group
		}

		itemTotal := p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
		group.Items = append(group.Items, ValuationItem{
			Name:       p.Name,
			Quantity:   p.StockQuantity,
			Price:      p.Price,
			TotalValue: itemTotal,
		})
		group.Subtotal = group.Subtotal.Add(itemTotal)
		response.GrandTotal = response.GrandTotal.Add(itemTotal)
	}

	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}
	sort.Slice(response.Categories, func(i, j int) bool {
		return response.Categories[i].CategoryName < response.Categories[j].CategoryName
	})
	return response, nil
}
