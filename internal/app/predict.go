package app

import (
	"context"
	"fmt"
	"time"

	"smartrate/internal/domain"
	"smartrate/internal/ml/artifact"
	"smartrate/internal/ml/feature"
)

// PredictionService scores one pricing query against the loaded artifact.
// Pure function of its inputs and the artifact; the only side effect is the
// first-call artifact load.
type PredictionService struct {
	store *artifact.Store
}

func NewPredictionService(store *artifact.Store) *PredictionService {
	return &PredictionService{store: store}
}

// Predict returns the raw (unclamped, unrounded) model price for a query.
// Fails with domain.ErrArtifactNotFound when training has never run.
func (s *PredictionService) Predict(ctx context.Context, q feature.Query) (float64, error) {
	pair, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	row := feature.BuildQueryRow(pair.Columns, q)
	price, err := pair.Model.Predict(row)
	if err != nil {
		// Load already validated dimensions; reaching this means the
		// cached pair is corrupt.
		return 0, fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)
	}
	return price, nil
}

// RecommendationQuery is the request-layer input. StayLength and
// BookingWindow are taken exactly as given, zero and negative included;
// callers that allow omitting them apply their own defaults before building
// the query.
type RecommendationQuery struct {
	HotelID       int64
	RoomTypeID    int64
	CheckInDate   time.Time
	StayLength    int
	BookingWindow int
}

// PricingService is the online path: resolve room context, predict, clamp.
type PricingService struct {
	repo     domain.BookingRepository
	cache    domain.Cache
	pred     *PredictionService
	cacheTTL time.Duration
}

func NewPricingService(repo domain.BookingRepository, cache domain.Cache, pred *PredictionService, ttl time.Duration) *PricingService {
	return &PricingService{repo: repo, cache: cache, pred: pred, cacheTTL: ttl}
}

// roomContext resolves hotel_id/room_type_id into the static pricing
// features, through the cache when possible.
func (s *PricingService) roomContext(ctx context.Context, hotelID, roomTypeID int64) (domain.RoomContext, error) {
	key := fmt.Sprintf("roomctx:%d:%d", hotelID, roomTypeID)
	var rc domain.RoomContext
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rc); ok {
			return rc, nil
		}
	}
	rc, err := s.repo.GetRoomContext(ctx, hotelID, roomTypeID)
	if err != nil {
		return domain.RoomContext{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rc, int(s.cacheTTL.Seconds()))
	}
	return rc, nil
}

// PredictAndRecommend prices one stay and clamps the result into the
// policy band around the room's base price. Both returned prices are
// rounded to two decimals.
func (s *PricingService) PredictAndRecommend(ctx context.Context, q RecommendationQuery) (domain.PriceRecommendation, error) {
	rc, err := s.roomContext(ctx, q.HotelID, q.RoomTypeID)
	if err != nil {
		return domain.PriceRecommendation{}, err
	}

	raw, err := s.pred.Predict(ctx, feature.Query{
		City:          rc.City,
		RoomTypeName:  rc.RoomTypeName,
		BasePrice:     rc.BasePrice,
		RoomCapacity:  rc.RoomCapacity,
		CheckInDate:   q.CheckInDate,
		StayLength:    q.StayLength,
		BookingWindow: q.BookingWindow,
	})
	if err != nil {
		return domain.PriceRecommendation{}, err
	}

	return domain.PriceRecommendation{
		HotelID:          q.HotelID,
		RoomTypeID:       q.RoomTypeID,
		CheckInDate:      q.CheckInDate,
		RecommendedPrice: round2(Clamp(raw, rc.BasePrice)),
		ModelPrice:       round2(raw),
		BasePrice:        rc.BasePrice,
		Currency:         "USD",
	}, nil
}
