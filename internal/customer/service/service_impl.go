package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) WithDB(db *gorm.DB) domain.Service {
	clone := *s
	clone.db = db
	return &clone
}

func (s *Service) EnsureByEmail(ctx context.Context, req domain.EnsureCustomerRequest) (domain.Customer, bool, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.Customer{}, false, err
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Customer{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return domain.Customer{}, false, domain.ErrInvalidName
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       strings.TrimSpace(req.Phone),
		Street:      strings.TrimSpace(req.Street),
		HouseNumber: strings.TrimSpace(req.HouseNumber),
		ZipCode:     strings.TrimSpace(req.ZipCode),
		City:        strings.TrimSpace(req.City),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, false, err
	}

	s.log.Debug("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, true, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || customerID == 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func normalizeEmail(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
