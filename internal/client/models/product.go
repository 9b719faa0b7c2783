package models

import "github.com/shopspring/decimal"

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Stock         int              `json:"stock"`
	Category      string           `json:"category,omitempty"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	Images        []string         `json:"images,omitempty"`
	IsActive      bool             `json:"isActive"`
}

// EffectivePrice is the discounted price when one is set and lower, else Price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

type ProductList struct {
	Products   []Product `json:"products"`
	Total      int       `json:"total,omitempty"`
	Page       int       `json:"page,omitempty"`
	TotalPages int       `json:"totalPages,omitempty"`
}

// ProductQuery filters a product listing. Zero fields are omitted.
type ProductQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
	Sort     string
}
