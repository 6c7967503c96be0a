package catalog

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products      []*Product `json:"products"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	TotalProducts int        `json:"totalProducts"`
}
