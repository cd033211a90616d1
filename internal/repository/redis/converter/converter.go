package converter

import "github.com/DRSN-tech/storefront-assistant/internal/domain"

// ProductConverter переводит товары между доменной моделью и моделью кэша.
type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToDomain(model *ProductRedisModel) *domain.Product
	ToArrRedisModel(entities []domain.Product) []ProductRedisModel
	ToArrDomain(models []ProductRedisModel) []domain.Product
}

type Converter struct{}

func (Converter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	if entity == nil {
		return nil
	}

	reviews := make([]ReviewRedisModel, 0, len(entity.Reviews))
	for _, r := range entity.Reviews {
		reviews = append(reviews, ReviewRedisModel{
			ID:        r.ID,
			Name:      r.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}

	return &ProductRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		Price:        entity.Price,
		Description:  entity.Description,
		Image:        entity.Image,
		Brand:        entity.Brand,
		Category:     entity.Category,
		CountInStock: entity.CountInStock,
		Rating:       entity.Rating,
		NumReviews:   entity.NumReviews,
		Reviews:      reviews,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (Converter) ToDomain(model *ProductRedisModel) *domain.Product {
	if model == nil {
		return nil
	}

	var reviews []domain.Review
	if len(model.Reviews) > 0 {
		reviews = make([]domain.Review, 0, len(model.Reviews))
		for _, r := range model.Reviews {
			reviews = append(reviews, domain.Review{
				ID:        r.ID,
				Name:      r.Name,
				Rating:    r.Rating,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt,
			})
		}
	}

	return &domain.Product{
		ID:           model.ID,
		Name:         model.Name,
		Price:        model.Price,
		Description:  model.Description,
		Image:        model.Image,
		Brand:        model.Brand,
		Category:     model.Category,
		CountInStock: model.CountInStock,
		Rating:       model.Rating,
		NumReviews:   model.NumReviews,
		Reviews:      reviews,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func (c Converter) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	res := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		res = append(res, *c.ToRedisModel(&entities[i]))
	}
	return res
}

func (c Converter) ToArrDomain(models []ProductRedisModel) []domain.Product {
	res := make([]domain.Product, 0, len(models))
	for i := range models {
		res = append(res, *c.ToDomain(&models[i]))
	}
	return res
}

var _ ProductConverter = Converter{}
