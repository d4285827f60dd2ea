// Package seed loads restaurant data from a YAML document into a store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

type Document struct {
	RestaurantInfo *InfoDoc      `yaml:"restaurant_info"`
	Menu           []CategoryDoc `yaml:"menu"`
	SpecialOffers  []OfferDoc    `yaml:"special_offers"`
	FAQ            []FAQDoc      `yaml:"faq"`
}

type InfoDoc struct {
	restaurant.Info `yaml:",inline"`

	OpeningHours OpeningHoursDoc `yaml:"opening_hours"`
}

type OpeningHoursDoc struct {
	Weekday string `yaml:"weekday"`
	Weekend string `yaml:"weekend"`
}

type CategoryDoc struct {
	Name          string           `yaml:"category_name"`
	Items         []ItemDoc        `yaml:"items"`
	SubCategories []SubCategoryDoc `yaml:"sub_categories"`
}

type ItemDoc struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       *float64 `yaml:"price"`
	Options     string   `yaml:"options"`
	Allergens   []string `yaml:"allergens"`
}

// SubCategoryDoc groups drinks, whose prices come as free text.
type SubCategoryDoc struct {
	Name  string     `yaml:"sub_category_name"`
	Items []DrinkDoc `yaml:"items"`
}

type DrinkDoc struct {
	Name      string `yaml:"name"`
	PriceInfo string `yaml:"price_info"`
}

type OfferDoc struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	PriceInfo   string `yaml:"price_info"`
	Details     string `yaml:"details"`
	Validity    string `yaml:"validity"`
}

type FAQDoc struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Stats struct {
	Categories int
	Items      int
	Offers     int
	FAQs       int
}

func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	return &doc, nil
}

func LoadFile(ctx context.Context, store restaurant.Store, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return Stats{}, err
	}
	return Load(ctx, store, doc)
}

// Load writes the document into the store. Entries missing required
// fields are skipped with a warning; store failures abort the load.
func Load(ctx context.Context, store restaurant.Store, doc *Document) (Stats, error) {
	var stats Stats
	if doc == nil {
		return stats, nil
	}

	if doc.RestaurantInfo != nil {
		info := doc.RestaurantInfo.Info
		info.OpeningHoursWeekday = doc.RestaurantInfo.OpeningHours.Weekday
		info.OpeningHoursWeekend = doc.RestaurantInfo.OpeningHours.Weekend
		if err := store.SaveInfo(ctx, &info); err != nil {
			return stats, fmt.Errorf("save restaurant info: %w", err)
		}
	} else {
		log.Warn().Msg("seed document has no restaurant_info")
	}

	for _, c := range doc.Menu {
		if strings.TrimSpace(c.Name) == "" {
			log.Warn().Msg("skipping menu category with no name")
			continue
		}
		cat, err := store.CreateCategory(ctx, c.Name)
		if err != nil {
			return stats, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		stats.Categories++

		for _, it := range c.Items {
			if strings.TrimSpace(it.Name) == "" || it.Price == nil {
				log.Warn().Str("category", c.Name).Str("item", it.Name).Msg("skipping menu item without name or price")
				continue
			}
			item := &restaurant.MenuItem{
				CategoryID:  cat.ID,
				Name:        it.Name,
				Description: it.Description,
				Price:       *it.Price,
				Options:     it.Options,
				Allergens:   cleanAllergens(it.Allergens),
			}
			if err := store.CreateMenuItem(ctx, item); err != nil {
				return stats, fmt.Errorf("create menu item %q: %w", it.Name, err)
			}
			stats.Items++
		}

		for _, sub := range c.SubCategories {
			for _, d := range sub.Items {
				if strings.TrimSpace(d.Name) == "" {
					log.Warn().Str("sub_category", sub.Name).Msg("skipping drink with no name")
					continue
				}
				if err := store.CreateMenuItem(ctx, drinkItem(cat.ID, sub.Name, d)); err != nil {
					return stats, fmt.Errorf("create drink %q: %w", d.Name, err)
				}
				stats.Items++
			}
		}
	}

	for _, o := range doc.SpecialOffers {
		if strings.TrimSpace(o.Title) == "" {
			log.Warn().Msg("skipping special offer with no title")
			continue
		}
		offer := &restaurant.SpecialOffer{
			Title:       o.Title,
			Description: o.Description,
			PriceInfo:   o.PriceInfo,
			Details:     o.Details,
			Validity:    o.Validity,
		}
		if err := store.CreateSpecialOffer(ctx, offer); err != nil {
			return stats, fmt.Errorf("create special offer %q: %w", o.Title, err)
		}
		stats.Offers++
	}

	for _, f := range doc.FAQ {
		if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
			log.Warn().Msg("skipping faq entry with missing question or answer")
			continue
		}
		if err := store.CreateFAQ(ctx, &restaurant.FAQ{Question: f.Question, Answer: f.Answer}); err != nil {
			return stats, fmt.Errorf("create faq: %w", err)
		}
		stats.FAQs++
	}

	log.Info().
		Int("categories", stats.Categories).
		Int("items", stats.Items).
		Int("offers", stats.Offers).
		Int("faqs", stats.FAQs).
		Msg("seed data loaded")
	return stats, nil
}

// drinkItem names the drink after its sub-category and keeps the raw price
// text as options when no amount can be read from it.
func drinkItem(categoryID int64, subCategory string, d DrinkDoc) *restaurant.MenuItem {
	name := d.Name
	if strings.TrimSpace(subCategory) != "" {
		name = fmt.Sprintf("%s (%s)", d.Name, subCategory)
	}
	item := &restaurant.MenuItem{
		CategoryID:  categoryID,
		Name:        name,
		Description: d.Name,
	}
	if price, ok := ParsePrice(d.PriceInfo); ok {
		item.Price = price
	} else {
		item.Options = d.PriceInfo
	}
	return item
}

var priceRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

// ParsePrice reads the amount from texts like "12 PLN" or "od 9,50 PLN".
// Texts carrying several numbers ("0.3l - 9 PLN / 0.5l - 12 PLN") are not
// a single price and are rejected.
func ParsePrice(s string) (float64, bool) {
	m := priceRe.FindAllString(s, -1)
	if len(m) != 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[0], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cleanAllergens(in []string) []string {
	var out []string
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" || a == "-" {
			continue
		}
		out = append(out, a)
	}
	return out
}
