package service

import (
	"errors"
	"fmt"

	"go-giftshop-pos/internal/model"
	"go-giftshop-pos/internal/repository"
	"go-giftshop-pos/internal/ws"
	"go-giftshop-pos/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrMissingContact   = errors.New("full name and email are required")
)

// RegisterCustomerRequest is the sign-up form payload.
type RegisterCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	DOB   string `json:"dob"`
}

// UpdateCustomerRequest covers the editable member fields. The loyalty code
// is assigned once and never changes.
type UpdateCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	DOB   string `json:"dob"`
}

type CustomerService interface {
	Register(req *RegisterCustomerRequest, userID, userName string) (*model.Customer, error)
	Update(id uuid.UUID, req *UpdateCustomerRequest, userID, userName string) (*model.Customer, error)
	Delete(id uuid.UUID, userID, userName string) error
	GetAll() ([]model.Customer, error)
	FindByLoyaltyCode(code string) (*model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	wsHub        *ws.Hub
}

func NewCustomerService(cRepo repository.CustomerRepository, hub *ws.Hub) CustomerService {
	return &customerService{customerRepo: cRepo, wsHub: hub}
}

// Register signs a member up with a freshly generated loyalty code and zero
// points. Code collisions are rare (one in 900k per try) but the unique index
// catches them, so generation retries a few times before giving up.
func (s *customerService) Register(req *RegisterCustomerRequest, userID, userName string) (*model.Customer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, ErrMissingContact
	}

	var customer *model.Customer
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		customer = &model.Customer{
			LoyaltyCode: model.NewLoyaltyCode(),
			Name:        req.Name,
			Email:       req.Email,
			DOB:         req.DOB,
			Points:      0,
		}
		customer.CreatedBy = userID
		customer.UpdatedBy = userID

		if err = s.customerRepo.Create(customer); err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "customers",
		Action:     "customer_registered",
		Data:       customer,
		Message:    fmt.Sprintf("%s signed up member %s (%s)", userName, customer.Name, customer.LoyaltyCode),
	})
	return customer, nil
}

func (s *customerService) Update(id uuid.UUID, req *UpdateCustomerRequest, userID, userName string) (*model.Customer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, ErrMissingContact
	}

	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		return nil, ErrCustomerNotFound
	}

	customer.Name = req.Name
	customer.Email = req.Email
	customer.DOB = req.DOB
	customer.UpdatedBy = userID

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "customers",
		Action:     "customer_updated",
		Data:       customer,
		Message:    fmt.Sprintf("%s updated member %s", userName, customer.Name),
	})
	return customer, nil
}

func (s *customerService) Delete(id uuid.UUID, userID, userName string) error {
	customer, err := s.customerRepo.FindByID(id)
	if err != nil {
		return ErrCustomerNotFound
	}

	if err := s.customerRepo.Delete(id); err != nil {
		return err
	}

	s.wsHub.Publish(ws.Event{
		Collection: "customers",
		Action:     "customer_deleted",
		Data:       customer,
		Message:    fmt.Sprintf("%s deleted member %s", userName, customer.Name),
	})
	return nil
}

func (s *customerService) GetAll() ([]model.Customer, error) {
	return s.customerRepo.FindAll()
}

func (s *customerService) FindByLoyaltyCode(code string) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByLoyaltyCode(code)
	if err != nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}
