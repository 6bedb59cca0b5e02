package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartrate/internal/app"
	"smartrate/internal/domain"
	"smartrate/internal/ml/artifact"
	"smartrate/internal/ml/forest"
)

// ---- fakes ----

type fakeRepo struct {
	rows    []domain.BookingRow
	ctxByID map[int64]domain.RoomContext
	loadErr error

	roomContextCalls int
}

func (f *fakeRepo) LoadBookingDataset(ctx context.Context) ([]domain.BookingRow, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.rows, nil
}

func (f *fakeRepo) ListHotels(ctx context.Context) ([]domain.HotelProfile, error) {
	return nil, nil
}

func (f *fakeRepo) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeProfile, error) {
	return nil, nil
}

func (f *fakeRepo) GetRoomContext(ctx context.Context, hotelID, roomTypeID int64) (domain.RoomContext, error) {
	f.roomContextCalls++
	rc, ok := f.ctxByID[roomTypeID]
	if !ok {
		return domain.RoomContext{}, domain.ErrNotFound
	}
	return rc, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok2 := dst.(*domain.RoomContext); ok2 {
		*d = v.(domain.RoomContext)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error { return nil }

// ---- helpers ----

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// trainedStore fits a small model on synthetic bookings and saves it to a
// temp-dir store, returning a fresh store pointed at the same files.
func trainedStore(t *testing.T, repo *fakeRepo) *artifact.Store {
	t.Helper()
	dir := t.TempDir()
	store := artifact.NewStore(dir)
	trainer := app.NewTrainingService(repo, store, forest.Config{Trees: 20, Seed: 42})
	if _, err := trainer.Train(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}
	return artifact.NewStore(dir)
}

func syntheticBookings(n int) []domain.BookingRow {
	rows := make([]domain.BookingRow, 0, n)
	start := date(2025, time.January, 6) // Monday
	for i := 0; i < n; i++ {
		checkIn := start.AddDate(0, 0, i%90)
		weekend := int(checkIn.Weekday()) == 5 || int(checkIn.Weekday()) == 6
		price := 100.0 + float64(i%7)*3
		if weekend {
			price *= 1.35
		}
		rows = append(rows, domain.BookingRow{
			BookingID:    int64(i + 1),
			HotelID:      1,
			RoomTypeID:   3,
			BookingDate:  checkIn.AddDate(0, 0, -(i%21 + 1)),
			CheckInDate:  checkIn,
			CheckOutDate: checkIn.AddDate(0, 0, i%3+1),
			Status:       domain.StatusConfirmed,
			PriceSold:    price,
			RoomTypeName: "Suite",
			RoomCapacity: 4,
			BasePrice:    100,
			HotelName:    "Oceanview Resort",
			City:         "Miami",
			Country:      "USA",
		})
	}
	return rows
}

// ---- tests ----

func TestPricingService_RecommendWithinBand(t *testing.T) {
	repo := &fakeRepo{
		rows: syntheticBookings(400),
		ctxByID: map[int64]domain.RoomContext{
			3: {HotelID: 1, RoomTypeID: 3, City: "Miami", RoomTypeName: "Suite", BasePrice: 100, RoomCapacity: 4},
		},
	}
	store := trainedStore(t, repo)
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), 10*time.Minute)

	rec, err := pricing.PredictAndRecommend(context.Background(), app.RecommendationQuery{
		HotelID:       1,
		RoomTypeID:    3,
		CheckInDate:   date(2025, time.March, 7), // Friday
		StayLength:    1,
		BookingWindow: 7,
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Currency != "USD" || rec.BasePrice != 100 {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	if rec.RecommendedPrice < 70 || rec.RecommendedPrice > 180 {
		t.Fatalf("recommended price %v outside clamp band", rec.RecommendedPrice)
	}
	// trained exclusively on prices near base; model price should be sane
	if rec.ModelPrice < 50 || rec.ModelPrice > 250 {
		t.Fatalf("model price %v implausible for training data", rec.ModelPrice)
	}
}

// stayContrastBookings prices day-use stays (zero nights) far below
// one-night stays so a prediction reveals which stay length reached the
// model.
func stayContrastBookings(n int) []domain.BookingRow {
	checkIn := date(2025, time.March, 10) // Monday
	rows := make([]domain.BookingRow, 0, n)
	for i := 0; i < n; i++ {
		nights, price := 0, 75.0
		if i%2 == 1 {
			nights, price = 1, 160.0
		}
		rows = append(rows, domain.BookingRow{
			BookingID:    int64(i + 1),
			HotelID:      1,
			RoomTypeID:   3,
			BookingDate:  checkIn.AddDate(0, 0, -((i/2)%14 + 1)), // same window spread per class
			CheckInDate:  checkIn,
			CheckOutDate: checkIn.AddDate(0, 0, nights),
			Status:       domain.StatusConfirmed,
			PriceSold:    price,
			RoomTypeName: "Suite",
			RoomCapacity: 4,
			BasePrice:    100,
			HotelName:    "Oceanview Resort",
			City:         "Miami",
			Country:      "USA",
		})
	}
	return rows
}

func TestPricingService_ExplicitZeroStayLengthPassesThrough(t *testing.T) {
	repo := &fakeRepo{
		rows: stayContrastBookings(300),
		ctxByID: map[int64]domain.RoomContext{
			3: {HotelID: 1, RoomTypeID: 3, City: "Miami", RoomTypeName: "Suite", BasePrice: 100, RoomCapacity: 4},
		},
	}
	store := trainedStore(t, repo)
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), time.Minute)

	base := app.RecommendationQuery{
		HotelID:       1,
		RoomTypeID:    3,
		CheckInDate:   date(2025, time.March, 10),
		BookingWindow: 7,
	}

	zero := base
	zero.StayLength = 0
	recZero, err := pricing.PredictAndRecommend(context.Background(), zero)
	if err != nil {
		t.Fatalf("zero stay: %v", err)
	}

	one := base
	one.StayLength = 1
	recOne, err := pricing.PredictAndRecommend(context.Background(), one)
	if err != nil {
		t.Fatalf("one night: %v", err)
	}

	// A zero must reach the model as a zero, not be rewritten to the
	// one-night default.
	if recZero.ModelPrice >= 120 {
		t.Fatalf("zero-stay model price %v should track the day-use rate near 75", recZero.ModelPrice)
	}
	if recOne.ModelPrice <= 120 {
		t.Fatalf("one-night model price %v should track the overnight rate near 160", recOne.ModelPrice)
	}
	if recZero.ModelPrice == recOne.ModelPrice {
		t.Fatal("explicit zero stay length was coerced to the default")
	}
}

func TestPricingService_RoomContextCached(t *testing.T) {
	repo := &fakeRepo{
		rows: syntheticBookings(400),
		ctxByID: map[int64]domain.RoomContext{
			3: {HotelID: 1, RoomTypeID: 3, City: "Miami", RoomTypeName: "Suite", BasePrice: 100, RoomCapacity: 4},
		},
	}
	store := trainedStore(t, repo)
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), 10*time.Minute)

	q := app.RecommendationQuery{HotelID: 1, RoomTypeID: 3, CheckInDate: date(2025, time.March, 7)}
	if _, err := pricing.PredictAndRecommend(context.Background(), q); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := pricing.PredictAndRecommend(context.Background(), q); err != nil {
		t.Fatalf("second: %v", err)
	}
	if repo.roomContextCalls != 1 {
		t.Fatalf("expected 1 repo lookup, got %d", repo.roomContextCalls)
	}
}

func TestPricingService_UnknownRoomType(t *testing.T) {
	repo := &fakeRepo{
		rows:    syntheticBookings(400),
		ctxByID: map[int64]domain.RoomContext{},
	}
	store := trainedStore(t, &fakeRepo{
		rows: syntheticBookings(400),
		ctxByID: map[int64]domain.RoomContext{
			3: {City: "Miami", RoomTypeName: "Suite", BasePrice: 100, RoomCapacity: 4},
		},
	})
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), time.Minute)

	_, err := pricing.PredictAndRecommend(context.Background(), app.RecommendationQuery{
		HotelID: 1, RoomTypeID: 99, CheckInDate: date(2025, time.March, 7),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_NoArtifact(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	repo := &fakeRepo{
		ctxByID: map[int64]domain.RoomContext{
			3: {City: "Miami", RoomTypeName: "Suite", BasePrice: 100, RoomCapacity: 4},
		},
	}
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), time.Minute)

	_, err := pricing.PredictAndRecommend(context.Background(), app.RecommendationQuery{
		HotelID: 1, RoomTypeID: 3, CheckInDate: date(2025, time.March, 7),
	})
	if !errors.Is(err, domain.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestPricingService_UnseenCityStillPrices(t *testing.T) {
	repo := &fakeRepo{
		rows: syntheticBookings(400), // training data only knows Miami/Suite
		ctxByID: map[int64]domain.RoomContext{
			8: {HotelID: 2, RoomTypeID: 8, City: "Reykjavik", RoomTypeName: "Igloo", BasePrice: 90, RoomCapacity: 2},
		},
	}
	store := trainedStore(t, repo)
	pricing := app.NewPricingService(repo, &fakeCache{}, app.NewPredictionService(store), time.Minute)

	rec, err := pricing.PredictAndRecommend(context.Background(), app.RecommendationQuery{
		HotelID: 2, RoomTypeID: 8, CheckInDate: date(2025, time.March, 8),
	})
	if err != nil {
		t.Fatalf("unseen categories must degrade gracefully, got %v", err)
	}
	if rec.RecommendedPrice < 0.7*90 || rec.RecommendedPrice > 1.8*90 {
		t.Fatalf("recommended price %v outside clamp band for base 90", rec.RecommendedPrice)
	}
}
