package hotel

import (
	"time"

	"github.com/uptrace/bun"
)

// PlaceholderGuestName is assigned on first contact, before the guest tells us their name.
const PlaceholderGuestName = "New Guest"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCheckedIn ReservationStatus = "checked_in"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

type Guest struct {
	bun.BaseModel `bun:"table:guests,alias:guest"`

	ID        string    `bun:"id,pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Phone     string    `bun:"phone,notnull,unique" json:"phone"`
	Email     *string   `bun:"email" json:"email,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// HasPlaceholderName reports whether the guest still carries the first-contact name.
func (g Guest) HasPlaceholderName() bool {
	return g.Name == "" || g.Name == PlaceholderGuestName
}

type Room struct {
	bun.BaseModel `bun:"table:rooms,alias:room"`

	ID            string    `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Type          string    `bun:"type,notnull" json:"type"`
	Capacity      int       `bun:"capacity,notnull" json:"capacity"`
	PricePerNight float64   `bun:"price_per_night,notnull" json:"price_per_night"`
	Amenities     []string  `bun:"amenities" json:"amenities"`
	IsAvailable   bool      `bun:"is_available,notnull" json:"is_available"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:reservation"`

	ID           string            `bun:"id,pk,type:uuid" json:"id"`
	RoomID       string            `bun:"room_id,notnull,type:uuid" json:"room_id"`
	GuestID      string            `bun:"guest_id,notnull,type:uuid" json:"guest_id"`
	CheckInDate  Date              `bun:"check_in_date,notnull,type:date" json:"check_in_date"`
	CheckOutDate Date              `bun:"check_out_date,notnull,type:date" json:"check_out_date"`
	Status       ReservationStatus `bun:"status,notnull" json:"status"`
	TotalPrice   float64           `bun:"total_price,notnull" json:"total_price"`
	ReminderSent bool              `bun:"reminder_sent,notnull" json:"reminder_sent"`
	CreatedAt    time.Time         `bun:"created_at,notnull" json:"created_at"`

	Guest *Guest `bun:"rel:belongs-to,join:guest_id=id" json:"-"`
	Room  *Room  `bun:"rel:belongs-to,join:room_id=id" json:"-"`
}

// Nights is the stay length in nights; zero when check-out is not after check-in.
func (r Reservation) Nights() int {
	n := r.CheckOutDate.DaysSince(r.CheckInDate)
	if n < 0 {
		return 0
	}
	return n
}

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:message"`

	ID          string    `bun:"id,pk,type:uuid" json:"id"`
	GuestID     string    `bun:"guest_id,notnull,type:uuid" json:"guest_id"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phone_number"`
	Direction   Direction `bun:"direction,notnull" json:"direction"`
	Content     string    `bun:"content,notnull" json:"content"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

type HotelConfig struct {
	bun.BaseModel `bun:"table:hotel_config,alias:hotel_config"`

	ID           string    `bun:"id,pk,type:uuid" json:"id"`
	HotelName    string    `bun:"hotel_name,notnull" json:"hotel_name"`
	Address      string    `bun:"address" json:"address"`
	Timezone     string    `bun:"timezone" json:"timezone"`
	CheckInTime  string    `bun:"check_in_time" json:"check_in_time"`
	CheckOutTime string    `bun:"check_out_time" json:"check_out_time"`
	Currency     string    `bun:"currency" json:"currency"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// DefaultHotelConfig is used when the singleton row is missing.
func DefaultHotelConfig() HotelConfig {
	return HotelConfig{
		HotelName:    "Luna Hotel",
		Timezone:     "UTC",
		CheckInTime:  "15:00",
		CheckOutTime: "11:00",
		Currency:     "USD",
	}
}

// WithDefaults fills blank fields from DefaultHotelConfig.
func (c HotelConfig) WithDefaults() HotelConfig {
	def := DefaultHotelConfig()
	if c.HotelName == "" {
		c.HotelName = def.HotelName
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.CheckInTime == "" {
		c.CheckInTime = def.CheckInTime
	}
	if c.CheckOutTime == "" {
		c.CheckOutTime = def.CheckOutTime
	}
	if c.Currency == "" {
		c.Currency = def.Currency
	}
	return c
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (c HotelConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
