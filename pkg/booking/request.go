package booking

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Quantity is an integer that tolerates the loose typing of inbound payloads:
// it accepts a JSON number or a numeric string, and anything unparseable
// decodes to zero rather than failing the whole request.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(n)
	return nil
}

// BookingRequest is the input payload for one run. It is built once from an
// external source and never mutated afterwards.
type BookingRequest struct {
	CarpetCleaning   bool `json:"carpet_cleaning"`
	PetStain         bool `json:"pet_stain"`
	Upholstery       bool `json:"upholstery"`
	CarpetStretching bool `json:"carpet_stretching"`

	Bedrooms int `json:"bedrooms"`

	LoveSeat        Quantity `json:"love_seat"`
	Couch           Quantity `json:"couch"`
	Recliner        Quantity `json:"recliner"`
	SmallSectional  Quantity `json:"small_sectional"`
	MediumSectional Quantity `json:"medium_sectional"`
	LargeSectional  Quantity `json:"large_sectional"`

	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`

	AppointmentDate string `json:"appointment_date"`
	TimeFrameStart  string `json:"time_frame_start"`
}

const defaultBedrooms = 4

// ParseRequest decodes a BookingRequest from JSON and applies defaults.
func ParseRequest(data []byte) (*BookingRequest, error) {
	var req BookingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing booking request: %w", err)
	}
	if req.Bedrooms <= 0 {
		req.Bedrooms = defaultBedrooms
	}
	return &req, nil
}

// ParseRequestFile reads and decodes a BookingRequest from a JSON file.
func ParseRequestFile(path string) (*BookingRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading booking request file %q: %w", path, err)
	}
	return ParseRequest(data)
}

// UpholsteryQuantity returns the requested quantity for a catalog item key.
func (r *BookingRequest) UpholsteryQuantity(key string) int {
	switch key {
	case "love_seat":
		return int(r.LoveSeat)
	case "couch":
		return int(r.Couch)
	case "recliner":
		return int(r.Recliner)
	case "small_sectional":
		return int(r.SmallSectional)
	case "medium_sectional":
		return int(r.MediumSectional)
	case "large_sectional":
		return int(r.LargeSectional)
	default:
		return 0
	}
}
