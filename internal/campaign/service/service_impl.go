package service

import (
	"context"
	"strings"

	"github.com/enfinitus/onboarding/internal/campaign/domain"
	"github.com/enfinitus/onboarding/internal/config"
	"github.com/enfinitus/onboarding/pkg/db/option"
	"github.com/enfinitus/onboarding/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Mapping *config.TariffMappingHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	mapping *config.TariffMappingHolder
	repo    repository.Repository[domain.Campaign]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("campaign.service"),
		mapping: p.Mapping,
		repo:    repository.ProvideStore[domain.Campaign](p.DB),
	}
}

func (s *Service) WithDB(db *gorm.DB) domain.Service {
	clone := *s
	clone.db = db
	clone.repo = repository.ProvideStore[domain.Campaign](db)
	return &clone
}

func (s *Service) List(ctx context.Context, req domain.ListCampaignRequest) ([]domain.Campaign, error) {
	filter := &domain.Campaign{}
	if req.PublishedOnly {
		filter.Published = true
	}

	items, err := s.repo.Find(ctx, filter, option.WithSortBy(option.QuerySortBy{SortBy: "key", OrderBy: "asc", Allow: map[string]bool{"key": true}}))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Campaign, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) GetByKey(ctx context.Context, key string) (domain.Campaign, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Campaign{}, domain.ErrNotFound
	}

	item, err := s.repo.FindOne(ctx, &domain.Campaign{Key: key, Published: true})
	if err != nil {
		return domain.Campaign{}, err
	}
	if item == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *item, nil
}

// Resolve picks the campaign for an order. An exact match on a published
// campaign key wins; otherwise the tariff type's canonical campaign is used.
func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.Resolution, error) {
	mapping := s.mapping.Get()
	tariffType, classifyErr := domain.ClassifyTariff(mapping, req.TariffID)

	if key := strings.TrimSpace(req.CampaignKey); key != "" {
		matched, err := s.repo.FindOne(ctx, &domain.Campaign{Key: key, Published: true})
		if err != nil {
			return domain.Resolution{}, err
		}
		if matched != nil {
			if classifyErr != nil {
				tariffType = matched.TariffType
			}
			return domain.Resolution{Campaign: *matched, TariffType: tariffType, MatchedByKey: true}, nil
		}
		s.log.Debug("campaign key not published, using tariff default", zap.String("campaign_key", key))
	}

	if classifyErr != nil {
		return domain.Resolution{}, classifyErr
	}

	key, ok := domain.CampaignKeyFor(mapping, tariffType)
	if !ok {
		return domain.Resolution{}, domain.ErrUnresolvableTariff
	}

	campaign, err := s.GetByKey(ctx, key)
	if err != nil {
		return domain.Resolution{}, err
	}
	return domain.Resolution{Campaign: campaign, TariffType: tariffType}, nil
}
