package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartrate/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) LoadBookingDataset(ctx context.Context) ([]domain.BookingRow, error) {
	rows, err := r.db.QueryContext(ctx, loadBookingDatasetSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: query booking dataset: %v", domain.ErrDataAccess, err)
	}
	defer rows.Close()

	var out []domain.BookingRow
	for rows.Next() {
		var br domain.BookingRow
		if err := rows.Scan(
			&br.BookingID,
			&br.HotelID,
			&br.RoomTypeID,
			&br.BookingDate,
			&br.CheckInDate,
			&br.CheckOutDate,
			&br.Status,
			&br.PriceSold,
			&br.RoomTypeName,
			&br.RoomCapacity,
			&br.BasePrice,
			&br.HotelName,
			&br.City,
			&br.Country,
		); err != nil {
			return nil, fmt.Errorf("%w: scan booking row: %v", domain.ErrDataAccess, err)
		}
		out = append(out, br)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate booking rows: %v", domain.ErrDataAccess, err)
	}
	return out, nil
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.HotelProfile, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HotelProfile
	for rows.Next() {
		var h domain.HotelProfile
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.Country); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListRoomTypes(ctx context.Context, hotelID int64) ([]domain.RoomTypeProfile, error) {
	rows, err := r.db.QueryContext(ctx, listRoomTypesSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomTypeProfile
	for rows.Next() {
		var rt domain.RoomTypeProfile
		if err := rows.Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Capacity, &rt.BasePrice); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *Repo) GetRoomContext(ctx context.Context, hotelID, roomTypeID int64) (domain.RoomContext, error) {
	row := r.db.QueryRowContext(ctx, getRoomContextSQL, hotelID, roomTypeID)

	var rc domain.RoomContext
	if err := row.Scan(&rc.HotelID, &rc.RoomTypeID, &rc.City, &rc.RoomTypeName, &rc.BasePrice, &rc.RoomCapacity); err != nil {
		if err == sql.ErrNoRows {
			return domain.RoomContext{}, domain.ErrNotFound
		}
		return domain.RoomContext{}, err
	}
	return rc, nil
}

// ---- seeder write path ----

func (r *Repo) Reset(ctx context.Context) error {
	// Children first to satisfy foreign keys.
	for _, stmt := range []string{
		"DELETE FROM bookings",
		"DELETE FROM room_types",
		"DELETE FROM hotels",
	} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) InsertHotel(ctx context.Context, h domain.HotelProfile) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, h.City, h.Country)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) InsertRoomType(ctx context.Context, rt domain.RoomTypeProfile) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRoomTypeSQL, rt.HotelID, rt.Name, rt.Capacity, rt.BasePrice)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) InsertBookings(ctx context.Context, bs []domain.BookingRecord) error {
	if len(bs) == 0 {
		return nil
	}
	values := make([]string, 0, len(bs))
	args := make([]any, 0, len(bs)*7)
	for _, b := range bs {
		values = append(values, "(?,?,?,?,?,?,?)")
		args = append(args,
			b.HotelID,
			b.RoomTypeID,
			b.BookingDate,
			b.CheckInDate,
			b.CheckOutDate,
			b.Status,
			b.PriceSold,
		)
	}
	sqlStr := insertBookingsPrefix + strings.Join(values, ",")
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
