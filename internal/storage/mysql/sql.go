package mysql

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// The flat training dataset: one row per booking with its room-type and
// hotel attributes joined on. No filtering here; status filtering belongs
// to feature engineering.
const loadBookingDatasetSQL = `
SELECT
  b.id          AS booking_id,
  b.hotel_id,
  b.room_type_id,
  b.booking_date,
  b.check_in_date,
  b.check_out_date,
  b.status,
  b.price_sold,
  rt.name       AS room_type_name,
  rt.capacity   AS room_capacity,
  rt.base_price,
  h.name        AS hotel_name,
  h.city,
  h.country
FROM bookings b
JOIN room_types rt ON b.room_type_id = rt.id
JOIN hotels h      ON b.hotel_id = h.id
`

const listHotelsSQL = `
SELECT id, name, city, country
FROM hotels
ORDER BY id
`

const listRoomTypesSQL = `
SELECT id, hotel_id, name, capacity, base_price
FROM room_types
WHERE hotel_id = ?
ORDER BY id
`

// Resolves the static pricing context for one hotel/room-type pair. The
// room type must belong to the hotel.
const getRoomContextSQL = `
SELECT
  h.id,
  rt.id,
  h.city,
  rt.name,
  rt.base_price,
  rt.capacity
FROM room_types rt
JOIN hotels h ON rt.hotel_id = h.id
WHERE h.id = ? AND rt.id = ?
`

// -----------------------------------------------------------------------------
// WRITE QUERIES (seeder only)
// -----------------------------------------------------------------------------

const insertHotelSQL = `
INSERT INTO hotels (name, city, country) VALUES (?, ?, ?)
`

const insertRoomTypeSQL = `
INSERT INTO room_types (hotel_id, name, capacity, base_price) VALUES (?, ?, ?, ?)
`

const insertBookingsPrefix = `
INSERT INTO bookings
  (hotel_id, room_type_id, booking_date, check_in_date, check_out_date, status, price_sold)
VALUES `
