package service

import (
	"context"
	"fmt"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
)

type ShopInput struct {
	Name    string  `json:"name" validate:"required,min=1,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

type ShopService interface {
	List(ctx context.Context, page model.PageRequest) (*model.Page[model.Shop], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	Create(ctx context.Context, actor Actor, in ShopInput) (*model.Shop, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in ShopInput) (*model.Shop, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type shopService struct {
	shops repository.ShopRepository
}

func NewShopService(shops repository.ShopRepository) ShopService {
	return &shopService{shops: shops}
}

func (s *shopService) List(ctx context.Context, page model.PageRequest) (*model.Page[model.Shop], error) {
	shops, total, err := s.shops.FindPage(ctx, page)
	if err != nil {
		return nil, Internal(err)
	}
	return &model.Page[model.Shop]{Items: shops, Pagination: model.NewPagination(total, page)}, nil
}

func (s *shopService) Get(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, asAppError(notFoundOr(err, "Shop not found"))
	}
	return shop, nil
}

func (s *shopService) Create(ctx context.Context, actor Actor, in ShopInput) (*model.Shop, error) {
	if err := authorize(actor, model.PrivShopCreate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	shop := &model.Shop{Name: in.Name, Address: in.Address, Phone: in.Phone}
	shop.Stamp(actor.auditID())
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, Internal(err)
	}
	return shop, nil
}

func (s *shopService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ShopInput) (*model.Shop, error) {
	if err := authorize(actor, model.PrivShopUpdate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, asAppError(notFoundOr(err, "Shop not found"))
	}
	shop.Name = in.Name
	shop.Address = in.Address
	shop.Phone = in.Phone
	shop.UpdatedBy = actor.auditID()

	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, Internal(err)
	}
	return shop, nil
}

func (s *shopService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivShopDelete); err != nil {
		return err
	}

	if _, err := s.shops.FindByID(ctx, id); err != nil {
		return asAppError(notFoundOr(err, "Shop not found"))
	}
	count, err := s.shops.CountProducts(ctx, id)
	if err != nil {
		return Internal(err)
	}
	if count > 0 {
		return Conflict(fmt.Sprintf("Shop still has %d products", count))
	}
	if err := s.shops.Delete(ctx, id, actor.auditID()); err != nil {
		return asAppError(notFoundOr(err, "Shop not found"))
	}
	return nil
}
