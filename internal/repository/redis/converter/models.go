package converter

import "time"

// ProductRedisModel — товар в том виде, в каком он лежит в кэше.
type ProductRedisModel struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Price        float64            `json:"price"`
	Description  string             `json:"description"`
	Image        string             `json:"image"`
	Brand        string             `json:"brand"`
	Category     string             `json:"category"`
	CountInStock int                `json:"count_in_stock"`
	Rating       float64            `json:"rating"`
	NumReviews   int                `json:"num_reviews"`
	Reviews      []ReviewRedisModel `json:"reviews,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at,omitempty"`
}

type ReviewRedisModel struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
