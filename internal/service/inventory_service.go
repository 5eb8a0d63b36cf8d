package service

import (
	"errors"
	"fmt"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/ws"
	"go-giftshop-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateCode   = errors.New("product code already exists")
	ErrInvalidRestock  = errors.New("restock quantity must be positive")
)

type InventoryService interface {
	CreateProduct(req *model.Product, userID, userName string) error
	UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error)
	RestockProduct(id uuid.UUID, qty int, userID, userName string) (*model.Product, error)
	DeleteProduct(id uuid.UUID, userID, userName string) error
	GetAllProducts() ([]model.Product, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *inventoryService) CreateProduct(req *model.Product, userID, userName string) error {
	// A blank code gets generated from the category, same as the terminal's
	// add-product form does.
	if req.Code == "" {
		req.Code = model.NewProductCode(req.Category)
	}

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	existing, _ := s.productRepo.FindByCode(req.Code)
	if existing != nil && existing.ID != uuid.Nil {
		return ErrDuplicateCode
	}

	req.CreatedBy = userID
	req.UpdatedBy = userID

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "inventory",
		Action:     "product_created",
		Data:       req,
		Message:    fmt.Sprintf("%s created product '%s'", userName, req.Name),
	})
	return nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *model.Product, userID, userName string) (*model.Product, error) {
	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := lockForUpdate(tx).First(&existing, "id = ?", id).Error; err != nil {
			return ErrProductNotFound
		}

		existing.Code = req.Code
		existing.Category = req.Category
		existing.Name = req.Name
		existing.Price = req.Price
		existing.Stock = req.Stock
		existing.UpdatedBy = userID

		if errs := validator.ValidateStruct(&existing); len(errs) > 0 {
			firstErr := errs[0]
			return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		updated = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "inventory",
		Action:     "product_updated",
		Data:       updated,
		Message:    fmt.Sprintf("%s updated product '%s'", userName, updated.Name),
	})
	return updated, nil
}

// RestockProduct adds qty to the current stock under a row lock.
func (s *inventoryService) RestockProduct(id uuid.UUID, qty int, userID, userName string) (*model.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidRestock
	}

	var restocked *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := lockForUpdate(tx).First(&existing, "id = ?", id).Error; err != nil {
			return ErrProductNotFound
		}

		if err := s.productRepo.UpdateStock(tx, existing.ID, existing.Stock+qty, userID); err != nil {
			return err
		}
		existing.Stock += qty
		restocked = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "inventory",
		Action:     "product_restocked",
		Data:       restocked,
		Message:    fmt.Sprintf("%s restocked %d units of '%s'", userName, qty, restocked.Name),
	})
	return restocked, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID, userID, userName string) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.Delete(id); err != nil {
		return err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "inventory",
		Action:     "product_deleted",
		Data:       product,
		Message:    fmt.Sprintf("%s deleted product '%s'", userName, product.Name),
	})
	return nil
}

func (s *inventoryService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}
