package sqlstore

import (
	"sort"
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/restaurant-assistant/restaurant"
)

type infoModel struct {
	bun.BaseModel `bun:"table:restaurant_info,alias:ri"`

	ID                    int64  `bun:",pk,autoincrement"`
	Name                  string `bun:",notnull"`
	Address               string
	Phone                 string
	Email                 string
	Website               string
	CuisineType           string
	PaymentMethods        string
	ParkingAvailable      bool `bun:",notnull,default:false"`
	SummerGardenAvailable bool `bun:",notnull,default:false"`
	ReservationsInfo      string
	OpeningHoursWeekday   string
	OpeningHoursWeekend   string
}

type categoryModel struct {
	bun.BaseModel `bun:"table:menu_categories,alias:mc"`

	ID   int64  `bun:",pk,autoincrement"`
	Name string `bun:",unique,notnull"`
}

type allergenModel struct {
	bun.BaseModel `bun:"table:allergens,alias:al"`

	ID   int64  `bun:",pk,autoincrement"`
	Name string `bun:",unique,notnull"`
}

type menuItemModel struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID          int64  `bun:",pk,autoincrement"`
	CategoryID  int64  `bun:",notnull"`
	Name        string `bun:",notnull"`
	Description string
	Price       float64
	Options     string
	Allergens   []*allergenModel `bun:"m2m:menu_item_allergens,join:MenuItem=Allergen"`
}

type menuItemAllergenModel struct {
	bun.BaseModel `bun:"table:menu_item_allergens,alias:mia"`

	MenuItemID int64          `bun:",pk"`
	MenuItem   *menuItemModel `bun:"rel:belongs-to,join:menu_item_id=id"`
	AllergenID int64          `bun:",pk"`
	Allergen   *allergenModel `bun:"rel:belongs-to,join:allergen_id=id"`
}

type bookingModel struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID              int64  `bun:",pk,autoincrement"`
	CustomerName    string `bun:",notnull"`
	CustomerPhone   string `bun:",notnull"`
	CustomerEmail   string
	BookingDate     string `bun:",notnull"`
	BookingTime     string `bun:",notnull"`
	PartySize       int    `bun:",notnull"`
	SpecialRequests string
	Status          string    `bun:",notnull,default:'pending'"`
	CreatedAt       time.Time `bun:",notnull"`
}

type orderModel struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          int64  `bun:",pk,autoincrement"`
	TableNumber int    `bun:",unique,notnull"`
	Status      string `bun:",notnull,default:'pending'"`
	Notes       string
	CreatedAt   time.Time         `bun:",notnull"`
	UpdatedAt   time.Time         `bun:",notnull"`
	Items       []*orderItemModel `bun:"rel:has-many,join:id=order_id"`
}

type orderItemModel struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID             int64  `bun:",pk,autoincrement"`
	OrderID        int64  `bun:",notnull"`
	MenuItemID     int64  `bun:",nullzero"`
	ItemName       string `bun:",notnull"`
	Quantity       int    `bun:",notnull"`
	SpecialRequest string
}

type offerModel struct {
	bun.BaseModel `bun:"table:special_offers,alias:so"`

	ID          int64  `bun:",pk,autoincrement"`
	Title       string `bun:",notnull"`
	Description string
	PriceInfo   string
	Validity    string
	Details     string
}

type faqModel struct {
	bun.BaseModel `bun:"table:faqs,alias:f"`

	ID       int64  `bun:",pk,autoincrement"`
	Question string `bun:",notnull"`
	Answer   string `bun:",notnull"`
}

// models lists every table in creation order.
var models = []any{
	(*infoModel)(nil),
	(*categoryModel)(nil),
	(*allergenModel)(nil),
	(*menuItemModel)(nil),
	(*menuItemAllergenModel)(nil),
	(*bookingModel)(nil),
	(*orderModel)(nil),
	(*orderItemModel)(nil),
	(*offerModel)(nil),
	(*faqModel)(nil),
}

func (m *infoModel) toDomain() *restaurant.Info {
	return &restaurant.Info{
		ID:                    m.ID,
		Name:                  m.Name,
		Address:               m.Address,
		Phone:                 m.Phone,
		Email:                 m.Email,
		Website:               m.Website,
		CuisineType:           m.CuisineType,
		PaymentMethods:        m.PaymentMethods,
		ParkingAvailable:      m.ParkingAvailable,
		SummerGardenAvailable: m.SummerGardenAvailable,
		ReservationsInfo:      m.ReservationsInfo,
		OpeningHoursWeekday:   m.OpeningHoursWeekday,
		OpeningHoursWeekend:   m.OpeningHoursWeekend,
	}
}

func infoFromDomain(in *restaurant.Info) *infoModel {
	return &infoModel{
		ID:                    in.ID,
		Name:                  in.Name,
		Address:               in.Address,
		Phone:                 in.Phone,
		Email:                 in.Email,
		Website:               in.Website,
		CuisineType:           in.CuisineType,
		PaymentMethods:        in.PaymentMethods,
		ParkingAvailable:      in.ParkingAvailable,
		SummerGardenAvailable: in.SummerGardenAvailable,
		ReservationsInfo:      in.ReservationsInfo,
		OpeningHoursWeekday:   in.OpeningHoursWeekday,
		OpeningHoursWeekend:   in.OpeningHoursWeekend,
	}
}

func (m *menuItemModel) toDomain() restaurant.MenuItem {
	out := restaurant.MenuItem{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Options:     m.Options,
	}
	for _, a := range m.Allergens {
		out.Allergens = append(out.Allergens, a.Name)
	}
	sort.Strings(out.Allergens)
	return out
}

func (m *bookingModel) toDomain() *restaurant.Booking {
	return &restaurant.Booking{
		ID:              m.ID,
		CustomerName:    m.CustomerName,
		CustomerPhone:   m.CustomerPhone,
		CustomerEmail:   m.CustomerEmail,
		BookingDate:     m.BookingDate,
		BookingTime:     m.BookingTime,
		PartySize:       m.PartySize,
		SpecialRequests: m.SpecialRequests,
		Status:          restaurant.BookingStatus(m.Status),
		CreatedAt:       m.CreatedAt,
	}
}

func (m *orderModel) toDomain() *restaurant.Order {
	out := &restaurant.Order{
		ID:          m.ID,
		TableNumber: m.TableNumber,
		Status:      restaurant.OrderStatus(m.Status),
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	items := append([]*orderItemModel(nil), m.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	for _, it := range items {
		out.Items = append(out.Items, restaurant.OrderItem{
			ID:             it.ID,
			MenuItemID:     it.MenuItemID,
			ItemName:       it.ItemName,
			Quantity:       it.Quantity,
			SpecialRequest: it.SpecialRequest,
		})
	}
	return out
}

func (m *offerModel) toDomain() restaurant.SpecialOffer {
	return restaurant.SpecialOffer{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		PriceInfo:   m.PriceInfo,
		Validity:    m.Validity,
		Details:     m.Details,
	}
}
