package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tanpawarit/restaurant-assistant/agent/knowledge"
)

type queryArgs struct {
	Query string `json:"query"`
}

func (h *handlers) findMenuItem(ctx context.Context, raw json.RawMessage) Outcome {
	args, err := decode[queryArgs](raw)
	if err != nil {
		return invalid("Please provide part of the dish name to search for.")
	}
	q := strings.TrimSpace(args.Query)
	if q == "" {
		return invalid("Please provide part of the dish name to search for.")
	}

	items, err := h.deps.Store.FindMenuItemsByName(ctx, q, maxMenuMatches)
	if err != nil {
		return backend(fmt.Errorf("find menu items %q: %w", q, err))
	}

	switch len(items) {
	case 0:
		return notFound(fmt.Sprintf("No menu items match %q. Ask the guest to rephrase or use a shorter part of the dish name.", q))
	case 1:
		it := items[0]
		return success(fmt.Sprintf("Found 1 menu item: ID %d, %s, price %s.", it.ID, it.Name, it.PriceLabel()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d menu items matching %q:\n", len(items), q)
	for i, it := range items {
		fmt.Fprintf(&b, "%d. ID %d: %s (%s)\n", i+1, it.ID, it.Name, it.PriceLabel())
	}
	b.WriteString("Ask the guest which one they mean and use its ID when ordering.")
	return success(b.String())
}

func (h *handlers) queryKnowledge(ctx context.Context, raw json.RawMessage) Outcome {
	args, err := decode[queryArgs](raw)
	if err != nil {
		return invalid("Please provide the question to look up.")
	}

	text, err := h.deps.Knowledge.Query(ctx, args.Query)
	switch {
	case errors.Is(err, knowledge.ErrEmpty):
		return notFound("The restaurant's information is currently unavailable in the database.")
	case errors.Is(err, knowledge.ErrNoMatch):
		return notFound("No information related to that question is available in the restaurant database.")
	case err != nil:
		return backend(fmt.Errorf("query knowledge base: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return notFound("The restaurant's information is currently unavailable in the database.")
	}
	return success("Information from the restaurant database:\n" + text)
}
