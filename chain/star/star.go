package star

import (
	"encoding/json"
	"errors"
)

var (
	_ json.Marshaler   = Star(nil)
	_ json.Unmarshaler = (*Star)(nil)

	errNilStar = errors.New("star: UnmarshalJSON on nil pointer")
)

// Star is the owner's description of a star, kept exactly as submitted.
// Wallets conventionally send "ra", "dec", "mag", "cen" and "story", but
// any JSON value is stored and returned untouched.
type Star []byte

// MarshalJSON returns s as the JSON encoding of the star. An empty star
// encodes as null.
func (s Star) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON keeps a copy of data.
func (s *Star) UnmarshalJSON(data []byte) error {
	if s == nil {
		return errNilStar
	}
	*s = append((*s)[0:0], data...)
	return nil
}

func (s Star) String() string {
	return string(s)
}
