package tool

var placeOrderSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"table_number": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Table number the order is for",
		},
		"items": map[string]any{
			"type":        "array",
			"minItems":    1,
			"description": "Items to order",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item_name": map[string]any{
						"type":        "string",
						"description": "Name of the dish or drink",
					},
					"menu_item_id": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "Menu item ID from find_menu_item_by_name",
					},
					"quantity": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "How many portions",
					},
					"special_request": map[string]any{
						"type":        "string",
						"description": "Optional request such as 'no onions'",
					},
				},
				"required": []string{"quantity"},
				"anyOf": []any{
					map[string]any{"required": []string{"item_name"}},
					map[string]any{"required": []string{"menu_item_id"}},
				},
			},
		},
	},
	"required": []string{"table_number", "items"},
}

var orderStatusSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"table_number": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Table number to check",
		},
		"order_id": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Order ID to check",
		},
	},
	"anyOf": []any{
		map[string]any{"required": []string{"table_number"}},
		map[string]any{"required": []string{"order_id"}},
	},
}

var reservationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"customer_name": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Name the booking is under",
		},
		"customer_phone": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Contact phone number",
		},
		"customer_email": map[string]any{
			"type":        "string",
			"description": "Optional contact email",
		},
		"booking_date": map[string]any{
			"type":        "string",
			"pattern":     `^\d{4}-\d{2}-\d{2}$`,
			"description": "Date in YYYY-MM-DD format",
		},
		"booking_time": map[string]any{
			"type":        "string",
			"pattern":     `^\d{2}:\d{2}$`,
			"description": "Time in HH:MM 24-hour format",
		},
		"party_size": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "Number of guests",
		},
		"special_requests": map[string]any{
			"type":        "string",
			"description": "Optional requests such as a high chair",
		},
	},
	"required": []string{"customer_name", "customer_phone", "booking_date", "booking_time", "party_size"},
}

var convertDateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"date_expression": map[string]any{
			"type":        "string",
			"description": "Date as the guest said it, e.g. 'tomorrow', 'next Friday', 'jutro'",
		},
	},
	"required": []string{"date_expression"},
}

var findMenuItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Part of the dish or drink name",
		},
	},
	"required": []string{"query"},
}

var queryKnowledgeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "The guest's question",
		},
	},
	"required": []string{"query"},
}
