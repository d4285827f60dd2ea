package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

type orderItemArgs struct {
	ItemName       string `json:"item_name"`
	MenuItemID     int64  `json:"menu_item_id"`
	Quantity       int    `json:"quantity"`
	SpecialRequest string `json:"special_request"`
}

type placeOrderArgs struct {
	TableNumber int             `json:"table_number"`
	Items       []orderItemArgs `json:"items"`
}

type orderStatusArgs struct {
	TableNumber int   `json:"table_number"`
	OrderID     int64 `json:"order_id"`
}

func (h *handlers) placeOrder(ctx context.Context, raw json.RawMessage) Outcome {
	args, err := decode[placeOrderArgs](raw)
	if err != nil {
		return invalid("The order details could not be read. Please provide the table number and the items.")
	}

	items := make([]restaurant.OrderItem, 0, len(args.Items))
	for _, it := range args.Items {
		item := restaurant.OrderItem{
			MenuItemID:     it.MenuItemID,
			ItemName:       strings.TrimSpace(it.ItemName),
			Quantity:       it.Quantity,
			SpecialRequest: strings.TrimSpace(it.SpecialRequest),
		}
		if it.MenuItemID > 0 {
			mi, err := h.deps.Store.GetMenuItem(ctx, it.MenuItemID)
			switch {
			case errors.Is(err, restaurant.ErrNotFound):
				return invalid(fmt.Sprintf("Sorry, there is no menu item with ID %d. Please check the menu and try again.", it.MenuItemID))
			case err != nil:
				return backend(fmt.Errorf("resolve menu item %d: %w", it.MenuItemID, err))
			}
			if item.ItemName == "" {
				item.ItemName = mi.Name
			}
		}
		items = append(items, item)
	}

	order, err := h.deps.Store.AppendOrderItems(ctx, args.TableNumber, items)
	switch {
	case isInvalid(err):
		return invalid("Sorry, I couldn't place that order: " + reason(err) + ".")
	case err != nil:
		return backend(fmt.Errorf("append order items for table %d: %w", args.TableNumber, err))
	}

	h.notify(ctx, EventOrderUpdated, order)
	return success(fmt.Sprintf(
		"Order placed successfully for table %d. Ordered items: %s. The table's order now has %d items in total and its status is %s.",
		order.TableNumber, restaurant.SummarizeItems(items), order.ItemCount(), order.Status,
	))
}

func (h *handlers) orderStatus(ctx context.Context, raw json.RawMessage) Outcome {
	args, err := decode[orderStatusArgs](raw)
	if err != nil {
		return invalid("Please provide a table number or an order ID.")
	}

	var order *restaurant.Order
	if args.OrderID > 0 {
		order, err = h.deps.Store.GetOrder(ctx, args.OrderID)
		if errors.Is(err, restaurant.ErrNotFound) {
			return notFound(fmt.Sprintf("No order found with ID %d.", args.OrderID))
		}
	} else {
		order, err = h.deps.Store.GetOrderByTable(ctx, args.TableNumber)
		if errors.Is(err, restaurant.ErrNotFound) {
			return notFound(fmt.Sprintf("No active order found for table %d.", args.TableNumber))
		}
	}
	if err != nil {
		return backend(fmt.Errorf("load order: %w", err))
	}

	return success(fmt.Sprintf("Order for table %d is %s. Items: %s", order.TableNumber, order.Status, order.Summary()))
}
