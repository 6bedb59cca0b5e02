// Package feature turns booking rows (or one pricing query) into the
// fixed-schema numeric vectors the price model consumes. Batch mode defines
// the canonical column schema at training time; single-query mode aligns a
// synthetic row to a previously recorded schema.
package feature

import (
	"sort"
	"time"

	"smartrate/internal/domain"
)

// Numeric columns, in canonical order. One-hot columns follow: city_<v>
// sorted by value, then room_type_name_<v> sorted by value.
const (
	ColBasePrice        = "base_price"
	ColRoomCapacity     = "room_capacity"
	ColStayLength       = "stay_length"
	ColBookingWindow    = "booking_window"
	ColCheckInWeekday   = "check_in_weekday"
	ColIsWeekendCheckIn = "is_weekend_checkin"

	cityPrefix     = "city_"
	roomTypePrefix = "room_type_name_"
)

var numericColumns = []string{
	ColBasePrice,
	ColRoomCapacity,
	ColStayLength,
	ColBookingWindow,
	ColCheckInWeekday,
	ColIsWeekendCheckIn,
}

// Set is a training dataset: a feature matrix X, target vector Y
// (price actually sold) and the canonical column schema.
type Set struct {
	Columns []string
	X       [][]float64
	Y       []float64
}

// Query is one pricing question, already resolved to room context by the
// caller. Stay length and booking window are taken as-is; out-of-range
// values degrade the prediction, they never fail derivation.
type Query struct {
	City          string
	RoomTypeName  string
	BasePrice     float64
	RoomCapacity  int
	CheckInDate   time.Time
	StayLength    int
	BookingWindow int
}

// Weekday returns the day of week with Monday=0 .. Sunday=6, the convention
// the model was defined with (Go's time.Weekday starts at Sunday).
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekendCheckIn reports whether the check-in weekday counts as weekend
// for pricing purposes: Friday (4) or Saturday (5).
func IsWeekendCheckIn(t time.Time) bool {
	wd := Weekday(t)
	return wd == 4 || wd == 5
}

// daysBetween counts whole calendar days from one date to another,
// ignoring clock time and zone.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// BuildTrainingSet derives the training matrix from the joined dataset.
// Only confirmed bookings carry a realized price and are kept; everything
// else is dropped before derivation. The returned column schema is the
// canonical one the artifact stores and every inference row must match.
func BuildTrainingSet(rows []domain.BookingRow) *Set {
	confirmed := make([]domain.BookingRow, 0, len(rows))
	for _, r := range rows {
		if r.Status == domain.StatusConfirmed {
			confirmed = append(confirmed, r)
		}
	}

	cities := distinct(confirmed, func(r domain.BookingRow) string { return r.City })
	roomTypes := distinct(confirmed, func(r domain.BookingRow) string { return r.RoomTypeName })

	cols := make([]string, 0, len(numericColumns)+len(cities)+len(roomTypes))
	cols = append(cols, numericColumns...)
	for _, c := range cities {
		cols = append(cols, cityPrefix+c)
	}
	for _, rt := range roomTypes {
		cols = append(cols, roomTypePrefix+rt)
	}

	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}

	set := &Set{
		Columns: cols,
		X:       make([][]float64, 0, len(confirmed)),
		Y:       make([]float64, 0, len(confirmed)),
	}
	for _, r := range confirmed {
		row := make([]float64, len(cols))
		row[0] = r.BasePrice
		row[1] = float64(r.RoomCapacity)
		row[2] = float64(daysBetween(r.CheckInDate, r.CheckOutDate))
		row[3] = float64(daysBetween(r.BookingDate, r.CheckInDate))
		row[4] = float64(Weekday(r.CheckInDate))
		if IsWeekendCheckIn(r.CheckInDate) {
			row[5] = 1
		}
		row[colIdx[cityPrefix+r.City]] = 1
		row[colIdx[roomTypePrefix+r.RoomTypeName]] = 1

		set.X = append(set.X, row)
		set.Y = append(set.Y, r.PriceSold)
	}
	return set
}

// BuildQueryRow encodes one query against a recorded schema. Every schema
// column defaults to zero; numeric columns are overwritten when the schema
// carries them, and the city/room-type one-hots are set only when that exact
// column was observed at training time. Categories unseen during training
// therefore contribute no signal instead of failing. The output vector has
// exactly the schema's columns in the schema's order.
func BuildQueryRow(schema []string, q Query) []float64 {
	row := make([]float64, len(schema))

	wd := Weekday(q.CheckInDate)
	weekend := 0.0
	if IsWeekendCheckIn(q.CheckInDate) {
		weekend = 1
	}
	numeric := map[string]float64{
		ColBasePrice:        q.BasePrice,
		ColRoomCapacity:     float64(q.RoomCapacity),
		ColStayLength:       float64(q.StayLength),
		ColBookingWindow:    float64(q.BookingWindow),
		ColCheckInWeekday:   float64(wd),
		ColIsWeekendCheckIn: weekend,
	}

	for i, col := range schema {
		if v, ok := numeric[col]; ok {
			row[i] = v
			continue
		}
		if col == cityPrefix+q.City || col == roomTypePrefix+q.RoomTypeName {
			row[i] = 1
		}
	}
	return row
}

func distinct(rows []domain.BookingRow, key func(domain.BookingRow) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
