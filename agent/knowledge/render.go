package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

// Chunk is one independently retrievable piece of the knowledge base.
type Chunk struct {
	ID      string
	Section string
	Text    string
}

// Render writes the whole snapshot as Markdown. Sections, categories, items,
// offers and FAQ entries are emitted in ID order so equal snapshots render
// to equal text.
func Render(s Snapshot) string {
	var parts []string
	if s.Info != nil {
		parts = append(parts, renderInfo(s.Info))
	}
	if menu := renderMenu(s.Menu); menu != "" {
		parts = append(parts, menu)
	}
	if len(s.Offers) > 0 {
		var b strings.Builder
		b.WriteString("## Special offers\n")
		for _, o := range sortedOffers(s.Offers) {
			b.WriteString(renderOffer(o))
		}
		parts = append(parts, b.String())
	}
	if len(s.FAQs) > 0 {
		var b strings.Builder
		b.WriteString("## FAQ\n")
		for _, f := range sortedFAQs(s.FAQs) {
			b.WriteString(renderFAQ(f))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// Chunks splits the snapshot into one chunk per info block, menu item,
// offer and FAQ entry, in the same order Render uses.
func Chunks(s Snapshot) []Chunk {
	var out []Chunk
	if s.Info != nil {
		out = append(out, Chunk{ID: "info", Section: "Restaurant information", Text: renderInfo(s.Info)})
	}
	for _, c := range sortedCategories(s.Menu) {
		for _, it := range sortedItems(c.Items) {
			out = append(out, Chunk{
				ID:      fmt.Sprintf("menu-item-%d", it.ID),
				Section: "Menu / " + c.Name,
				Text:    fmt.Sprintf("## Menu / %s\n%s", c.Name, renderItem(it)),
			})
		}
	}
	for _, o := range sortedOffers(s.Offers) {
		out = append(out, Chunk{
			ID:      fmt.Sprintf("offer-%d", o.ID),
			Section: "Special offers",
			Text:    "## Special offers\n" + renderOffer(o),
		})
	}
	for _, f := range sortedFAQs(s.FAQs) {
		out = append(out, Chunk{
			ID:      fmt.Sprintf("faq-%d", f.ID),
			Section: "FAQ",
			Text:    "## FAQ\n" + renderFAQ(f),
		})
	}
	return out
}

func renderInfo(in *restaurant.Info) string {
	var b strings.Builder
	b.WriteString("## Restaurant information\n")
	field := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "*   **%s**: %s\n", label, value)
		}
	}
	field("Name", in.Name)
	field("Address", in.Address)
	if in.OpeningHoursWeekday != "" || in.OpeningHoursWeekend != "" {
		b.WriteString("*   **Opening hours**:\n")
		if in.OpeningHoursWeekday != "" {
			fmt.Fprintf(&b, "    *   Monday - Friday: %s\n", in.OpeningHoursWeekday)
		}
		if in.OpeningHoursWeekend != "" {
			fmt.Fprintf(&b, "    *   Saturday - Sunday: %s\n", in.OpeningHoursWeekend)
		}
	}
	field("Phone", in.Phone)
	field("Email", in.Email)
	field("Website", in.Website)
	field("Cuisine", in.CuisineType)
	field("Payment methods", in.PaymentMethods)
	field("Parking", yesNo(in.ParkingAvailable))
	field("Summer garden", yesNo(in.SummerGardenAvailable))
	field("Reservations", in.ReservationsInfo)
	return b.String()
}

func renderMenu(menu []restaurant.MenuCategory) string {
	var b strings.Builder
	for _, c := range sortedCategories(menu) {
		if len(c.Items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", c.Name)
		for _, it := range sortedItems(c.Items) {
			b.WriteString(renderItem(it))
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "## Menu\n" + b.String()
}

func renderItem(it restaurant.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*   **%s** (ID %d)\n", it.Name, it.ID)
	if d := strings.TrimSpace(it.Description); d != "" {
		fmt.Fprintf(&b, "    *   Description: %s\n", d)
	}
	fmt.Fprintf(&b, "    *   Price: %s\n", it.PriceLabel())
	if len(it.Allergens) > 0 {
		allergens := append([]string(nil), it.Allergens...)
		sort.Strings(allergens)
		fmt.Fprintf(&b, "    *   Allergens: %s\n", strings.Join(allergens, ", "))
	}
	return b.String()
}

func renderOffer(o restaurant.SpecialOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*   **%s**\n", o.Title)
	if o.Description != "" {
		fmt.Fprintf(&b, "    *   Description: %s\n", o.Description)
	}
	if o.PriceInfo != "" {
		fmt.Fprintf(&b, "    *   Price: %s\n", o.PriceInfo)
	}
	if o.Details != "" {
		fmt.Fprintf(&b, "    *   Details: %s\n", o.Details)
	}
	if o.Validity != "" {
		fmt.Fprintf(&b, "    *   Valid: %s\n", o.Validity)
	}
	return b.String()
}

func renderFAQ(f restaurant.FAQ) string {
	return fmt.Sprintf("*   **Question**: %s\n    *   **Answer**: %s\n", f.Question, f.Answer)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func sortedCategories(in []restaurant.MenuCategory) []restaurant.MenuCategory {
	out := append([]restaurant.MenuCategory(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedItems(in []restaurant.MenuItem) []restaurant.MenuItem {
	out := append([]restaurant.MenuItem(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedOffers(in []restaurant.SpecialOffer) []restaurant.SpecialOffer {
	out := append([]restaurant.SpecialOffer(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedFAQs(in []restaurant.FAQ) []restaurant.FAQ {
	out := append([]restaurant.FAQ(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
