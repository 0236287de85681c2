package model

import (
	"strings"

	"github.com/goccy/go-json"
)

// User is the raw user record. Every preference field is optional.
type User struct {
	ID             string     `json:"id"`
	StudentID      string     `json:"studentId"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Hostel         string     `json:"hostel"`
	Floor          string     `json:"floor,omitempty"`
	RoomNumber     string     `json:"roomNumber"`
	Cuisines       StringList `json:"cuisines,omitempty"`
	SpiceLevel     string     `json:"spiceLevel,omitempty"`
	VegNonVeg      string     `json:"vegNonVeg,omitempty"`
	FavouriteFoods StringList `json:"favouriteFoods,omitempty"`
}

// StringList decodes either a JSON array of strings or a single
// comma-separated string. Blank entries are dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = compact(many)
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = compact(strings.Split(one, ","))
	return nil
}

func compact(in []string) StringList {
	out := make(StringList, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
