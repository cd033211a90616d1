package domain

import (
	"strings"
	"time"
)

const anonymousAuthor = "Anonymous"

// Review — отзыв покупателя о товаре.
type Review struct {
	ID        string    `json:"_id,omitempty"`
	Name      string    `json:"name"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author возвращает имя автора или "Anonymous", если имя не указано.
func (r Review) Author() string {
	if strings.TrimSpace(r.Name) == "" {
		return anonymousAuthor
	}
	return r.Name
}
