package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

// Source is the read side of the data store the knowledge base is built from.
type Source interface {
	GetInfo(ctx context.Context) (*restaurant.Info, error)
	ListCategories(ctx context.Context) ([]restaurant.MenuCategory, error)
	ListSpecialOffers(ctx context.Context) ([]restaurant.SpecialOffer, error)
	ListFAQs(ctx context.Context) ([]restaurant.FAQ, error)
}

// Snapshot is everything the assistant may state as fact.
type Snapshot struct {
	Info   *restaurant.Info
	Menu   []restaurant.MenuCategory
	Offers []restaurant.SpecialOffer
	FAQs   []restaurant.FAQ
}

func (s Snapshot) Empty() bool {
	if s.Info != nil || len(s.Offers) > 0 || len(s.FAQs) > 0 {
		return false
	}
	for _, c := range s.Menu {
		if len(c.Items) > 0 {
			return false
		}
	}
	return true
}

func LoadSnapshot(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot

	info, err := src.GetInfo(ctx)
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
		log.Warn().Msg("restaurant info not found while building knowledge base")
	case err != nil:
		return Snapshot{}, fmt.Errorf("load restaurant info: %w", err)
	default:
		snap.Info = info
	}

	if snap.Menu, err = src.ListCategories(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load menu: %w", err)
	}
	if snap.Offers, err = src.ListSpecialOffers(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load special offers: %w", err)
	}
	if snap.FAQs, err = src.ListFAQs(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load faq: %w", err)
	}
	return snap, nil
}
