package domain

import "time"

// Booking statuses as stored in the historical store.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

type HotelProfile struct {
	ID      int64
	Name    string
	City    string
	Country string
}

type RoomTypeProfile struct {
	ID        int64
	HotelID   int64
	Name      string
	Capacity  int
	BasePrice float64
}

// BookingRecord is one historical booking outcome. Immutable once written;
// there is no update path in this system.
type BookingRecord struct {
	ID           int64
	HotelID      int64
	RoomTypeID   int64
	BookingDate  time.Time
	CheckInDate  time.Time
	CheckOutDate time.Time
	Status       string
	PriceSold    float64
}

// BookingRow is one row of the flat training dataset: a booking joined with
// its room type and hotel. Column set mirrors the store's join query.
type BookingRow struct {
	BookingID    int64
	HotelID      int64
	RoomTypeID   int64
	BookingDate  time.Time
	CheckInDate  time.Time
	CheckOutDate time.Time
	Status       string
	PriceSold    float64
	RoomTypeName string
	RoomCapacity int
	BasePrice    float64
	HotelName    string
	City         string
	Country      string
}

// RoomContext is what the online path needs to price one room type: the
// static features resolved from hotel_id/room_type_id before prediction.
type RoomContext struct {
	HotelID      int64
	RoomTypeID   int64
	City         string
	RoomTypeName string
	BasePrice    float64
	RoomCapacity int
}

// PriceRecommendation is the per-request result. Transient, never persisted.
type PriceRecommendation struct {
	HotelID          int64
	RoomTypeID       int64
	CheckInDate      time.Time
	RecommendedPrice float64
	ModelPrice       float64
	BasePrice        float64
	Currency         string
}
