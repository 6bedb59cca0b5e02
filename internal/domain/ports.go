package domain

import "context"

type BookingRepository interface {
	// Offline path: the three-way join feeding feature engineering.
	LoadBookingDataset(ctx context.Context) ([]BookingRow, error)

	// Online lookups: the request layer resolves ids before prediction.
	ListHotels(ctx context.Context) ([]HotelProfile, error)
	ListRoomTypes(ctx context.Context, hotelID int64) ([]RoomTypeProfile, error)
	GetRoomContext(ctx context.Context, hotelID, roomTypeID int64) (RoomContext, error)
}

// SeedRepository is the write side used only by the synthetic seeder.
type SeedRepository interface {
	Reset(ctx context.Context) error
	InsertHotel(ctx context.Context, h HotelProfile) (int64, error)
	InsertRoomType(ctx context.Context, rt RoomTypeProfile) (int64, error)
	InsertBookings(ctx context.Context, bs []BookingRecord) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
