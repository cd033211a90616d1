package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
)

// Поля товара, которые можно менять через инструменты, в порядке отчёта.
const (
	FieldName         = "name"
	FieldPrice        = "price"
	FieldDescription  = "description"
	FieldImage        = "image"
	FieldBrand        = "brand"
	FieldCategory     = "category"
	FieldCountInStock = "countInStock"
)

var allowedUpdateFields = []string{
	FieldName,
	FieldPrice,
	FieldDescription,
	FieldImage,
	FieldBrand,
	FieldCategory,
	FieldCountInStock,
}

// AllowedUpdateFields возвращает копию списка разрешённых полей.
func AllowedUpdateFields() []string {
	return slices.Clone(allowedUpdateFields)
}

// ProductUpdate — частичное обновление товара. nil означает «поле не передано».
// Ключи вне разрешённого списка сохраняются в Unknown и отклоняются при валидации.
type ProductUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Category     *string  `json:"category,omitempty"`
	CountInStock *int     `json:"countInStock,omitempty"`

	Unknown []string `json:"-"`
}

// UnmarshalJSON раскладывает известные ключи по полям и запоминает неизвестные.
// JSON null трактуется как отсутствие значения.
func (u *ProductUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: updates must be an object", e.ErrInvalidArguments)
	}

	*u = ProductUpdate{}
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			if !slices.Contains(allowedUpdateFields, key) {
				u.Unknown = append(u.Unknown, key)
			}
			continue
		}

		var err error
		switch key {
		case FieldName:
			err = json.Unmarshal(value, &u.Name)
		case FieldPrice:
			err = json.Unmarshal(value, &u.Price)
		case FieldDescription:
			err = json.Unmarshal(value, &u.Description)
		case FieldImage:
			err = json.Unmarshal(value, &u.Image)
		case FieldBrand:
			err = json.Unmarshal(value, &u.Brand)
		case FieldCategory:
			err = json.Unmarshal(value, &u.Category)
		case FieldCountInStock:
			err = json.Unmarshal(value, &u.CountInStock)
		default:
			u.Unknown = append(u.Unknown, key)
		}
		if err != nil {
			return fmt.Errorf("%w: field %q has wrong type", e.ErrInvalidArguments, key)
		}
	}

	sort.Strings(u.Unknown)
	return nil
}

// Fields возвращает переданные поля в порядке разрешённого списка.
func (u *ProductUpdate) Fields() []string {
	fields := make([]string, 0, len(allowedUpdateFields))
	for _, f := range allowedUpdateFields {
		if u.has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

func (u *ProductUpdate) has(field string) bool {
	switch field {
	case FieldName:
		return u.Name != nil
	case FieldPrice:
		return u.Price != nil
	case FieldDescription:
		return u.Description != nil
	case FieldImage:
		return u.Image != nil
	case FieldBrand:
		return u.Brand != nil
	case FieldCategory:
		return u.Category != nil
	case FieldCountInStock:
		return u.CountInStock != nil
	default:
		return false
	}
}

// Validate проверяет ключи и значения обновления до любых сетевых вызовов.
func (u *ProductUpdate) Validate() error {
	if len(u.Unknown) > 0 {
		return fmt.Errorf("%w: %s (allowed: %s)", e.ErrInvalidUpdateFields,
			strings.Join(u.Unknown, ", "), strings.Join(allowedUpdateFields, ", "))
	}

	if len(u.Fields()) == 0 {
		return e.ErrUpdatesRequired
	}

	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return e.ErrProductNameRequired
	}

	if u.Price != nil && *u.Price < 0 {
		return e.ErrPriceMustBePositive
	}

	if u.CountInStock != nil && *u.CountInStock < 0 {
		return e.ErrNegativeStock
	}

	return nil
}

// Merge строит полную замену товара: значение из обновления, если оно передано, иначе из base.
func (u *ProductUpdate) Merge(base domain.Product) domain.Product {
	merged := base
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.Price != nil {
		merged.Price = *u.Price
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.Image != nil {
		merged.Image = *u.Image
	}
	if u.Brand != nil {
		merged.Brand = *u.Brand
	}
	if u.Category != nil {
		merged.Category = *u.Category
	}
	if u.CountInStock != nil {
		merged.CountInStock = *u.CountInStock
	}
	return merged
}

// Diff сравнивает переданные поля со значениями до записи и возвращает только отличающиеся.
func (u *ProductUpdate) Diff(before, after domain.Product) []FieldChange {
	changes := make([]FieldChange, 0)
	for _, f := range u.Fields() {
		oldValue, newValue := fieldValue(before, f), fieldValue(after, f)
		if oldValue != newValue {
			changes = append(changes, FieldChange{Field: f, OldValue: oldValue, NewValue: newValue, Changed: true})
		}
	}
	return changes
}

func fieldValue(p domain.Product, field string) any {
	switch field {
	case FieldName:
		return p.Name
	case FieldPrice:
		return p.Price
	case FieldDescription:
		return p.Description
	case FieldImage:
		return p.Image
	case FieldBrand:
		return p.Brand
	case FieldCategory:
		return p.Category
	case FieldCountInStock:
		return p.CountInStock
	default:
		return nil
	}
}
