package tool

import (
	"fmt"
	"strings"
)

// PricingPolicy decides how total_price is derived from the nightly rate.
type PricingPolicy string

const (
	// PricingSingleNight charges one nightly rate regardless of stay length.
	PricingSingleNight PricingPolicy = "single_night"
	PricingPerNight    PricingPolicy = "per_night"
)

// OverlapPolicy decides whether create_reservation checks existing bookings of the room.
type OverlapPolicy string

const (
	OverlapAllow  OverlapPolicy = "allow"
	OverlapReject OverlapPolicy = "reject"
)

// AvailabilityMode decides whether check_availability looks at the requested dates.
type AvailabilityMode string

const (
	// AvailabilitySnapshot trusts the rooms' is_available flag only.
	AvailabilitySnapshot  AvailabilityMode = "snapshot"
	AvailabilityDateAware AvailabilityMode = "date_aware"
)

type Policy struct {
	Pricing      PricingPolicy    `envconfig:"PRICING_POLICY" default:"single_night"`
	Overlap      OverlapPolicy    `envconfig:"OVERLAP_POLICY" default:"allow"`
	Availability AvailabilityMode `envconfig:"AVAILABILITY_MODE" default:"snapshot"`
}

func DefaultPolicy() Policy {
	return Policy{
		Pricing:      PricingSingleNight,
		Overlap:      OverlapAllow,
		Availability: AvailabilitySnapshot,
	}
}

// Normalize lowercases the values and fills blanks with the defaults.
func (p Policy) Normalize() (Policy, error) {
	def := DefaultPolicy()
	p.Pricing = PricingPolicy(strings.ToLower(strings.TrimSpace(string(p.Pricing))))
	p.Overlap = OverlapPolicy(strings.ToLower(strings.TrimSpace(string(p.Overlap))))
	p.Availability = AvailabilityMode(strings.ToLower(strings.TrimSpace(string(p.Availability))))

	switch p.Pricing {
	case "":
		p.Pricing = def.Pricing
	case PricingSingleNight, PricingPerNight:
	default:
		return Policy{}, fmt.Errorf("unknown pricing policy %q", p.Pricing)
	}
	switch p.Overlap {
	case "":
		p.Overlap = def.Overlap
	case OverlapAllow, OverlapReject:
	default:
		return Policy{}, fmt.Errorf("unknown overlap policy %q", p.Overlap)
	}
	switch p.Availability {
	case "":
		p.Availability = def.Availability
	case AvailabilitySnapshot, AvailabilityDateAware:
	default:
		return Policy{}, fmt.Errorf("unknown availability mode %q", p.Availability)
	}
	return p, nil
}

// TotalPrice applies the pricing policy to a stay of nights.
func (p Policy) TotalPrice(pricePerNight float64, nights int) float64 {
	if p.Pricing == PricingPerNight && nights > 0 {
		return pricePerNight * float64(nights)
	}
	return pricePerNight
}
