package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"smartrate/internal/adapters/observability"
	"smartrate/internal/app"
	"smartrate/internal/domain"
)

type Handlers struct {
	Repo    domain.BookingRepository
	Pricing *app.PricingService

	// RecommendRPS caps the recommendation route; 0 uses the default.
	RecommendRPS int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{id}/room-types", h.listRoomTypes)
	s.mux.With(RateLimit(h.RecommendRPS)).Post("/v1/price-recommendation", h.recommendPrice)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type hotelDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type roomTypeDTO struct {
	ID        int64   `json:"id"`
	HotelID   int64   `json:"hotel_id"`
	Name      string  `json:"name"`
	Capacity  int     `json:"capacity"`
	BasePrice float64 `json:"base_price"`
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Repo.ListHotels(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list hotels failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list hotels")
		return
	}
	out := make([]hotelDTO, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, hotelDTO{ID: ht.ID, Name: ht.Name, City: ht.City, Country: ht.Country})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listRoomTypes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rts, err := h.Repo.ListRoomTypes(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("hotel_id", id).Msg("list room types failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list room types")
		return
	}
	out := make([]roomTypeDTO, 0, len(rts))
	for _, rt := range rts {
		out = append(out, roomTypeDTO{ID: rt.ID, HotelID: rt.HotelID, Name: rt.Name, Capacity: rt.Capacity, BasePrice: rt.BasePrice})
	}
	writeJSON(w, http.StatusOK, out)
}

type recommendRequest struct {
	HotelID       int64  `json:"hotel_id"`
	RoomTypeID    int64  `json:"room_type_id"`
	CheckInDate   string `json:"check_in_date"` // "YYYY-MM-DD"
	StayLength    *int   `json:"stay_length,omitempty"`
	BookingWindow *int   `json:"booking_window,omitempty"`
}

type recommendResponse struct {
	HotelID          int64   `json:"hotel_id"`
	RoomTypeID       int64   `json:"room_type_id"`
	CheckInDate      string  `json:"check_in_date"`
	RecommendedPrice float64 `json:"recommended_price"`
	ModelPrice       float64 `json:"model_price"`
	BasePrice        float64 `json:"base_price"`
	Currency         string  `json:"currency"`
}

func (h *Handlers) recommendPrice(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if req.HotelID <= 0 || req.RoomTypeID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "hotel_id and room_type_id are required")
		return
	}
	checkIn, err := time.Parse("2006-01-02", req.CheckInDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Date", "check_in_date must be YYYY-MM-DD")
		return
	}

	// Defaults apply only when the field is absent from the payload; an
	// explicit value, zero included, is forwarded as-is.
	q := app.RecommendationQuery{
		HotelID:       req.HotelID,
		RoomTypeID:    req.RoomTypeID,
		CheckInDate:   checkIn,
		StayLength:    1,
		BookingWindow: 7,
	}
	if req.StayLength != nil {
		q.StayLength = *req.StayLength
	}
	if req.BookingWindow != nil {
		q.BookingWindow = *req.BookingWindow
	}

	start := time.Now()
	rec, err := h.Pricing.PredictAndRecommend(r.Context(), q)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		observability.ObservePrediction("no_room", time.Since(start))
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown hotel or room type")
		return
	case errors.Is(err, domain.ErrArtifactNotFound):
		observability.ObservePrediction("no_artifact", time.Since(start))
		writeProblem(w, http.StatusServiceUnavailable, "Prediction Unavailable", "no trained model is available yet")
		return
	case err != nil:
		observability.ObservePrediction("error", time.Since(start))
		log.Error().Err(err).Int64("hotel_id", req.HotelID).Int64("room_type_id", req.RoomTypeID).Msg("price recommendation failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not compute recommendation")
		return
	}
	observability.ObservePrediction("ok", time.Since(start))

	writeJSON(w, http.StatusOK, recommendResponse{
		HotelID:          rec.HotelID,
		RoomTypeID:       rec.RoomTypeID,
		CheckInDate:      rec.CheckInDate.Format("2006-01-02"),
		RecommendedPrice: rec.RecommendedPrice,
		ModelPrice:       rec.ModelPrice,
		BasePrice:        rec.BasePrice,
		Currency:         rec.Currency,
	})
}
