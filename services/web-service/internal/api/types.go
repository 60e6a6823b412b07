package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the success body of login and signup. Customer is kept
// verbatim so it can be persisted exactly as issued.
type AuthResult struct {
	Token    string          `json:"token"`
	Customer json.RawMessage `json:"customer"`
}

type Service struct {
	ID       string
	Name     string
	Price    Amount
	Duration string
	Status   string
}

type serviceWire struct {
	ID       flexString `json:"id"`
	Name     flexString `json:"name"`
	Price    Amount     `json:"price"`
	Duration flexString `json:"duration"`
	Status   flexString `json:"status"`
}

func (s *Service) UnmarshalJSON(b []byte) error {
	var w serviceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Service{
		ID:       string(w.ID),
		Name:     string(w.Name),
		Price:    w.Price,
		Duration: string(w.Duration),
		Status:   string(w.Status),
	}
	return nil
}

func (s Service) MarshalJSON() ([]byte, error) {
	return json.Marshal(serviceWire{
		ID:       flexString(s.ID),
		Name:     flexString(s.Name),
		Price:    s.Price,
		Duration: flexString(s.Duration),
		Status:   flexString(s.Status),
	})
}

// OrderRequest is the body of POST /api/orders. The delivery address collected
// on the form is not part of it.
type OrderRequest struct {
	CustomerName        string `json:"customerName"`
	CustomerEmail       string `json:"customerEmail"`
	CustomerPhone       string `json:"customerPhone"`
	ServiceID           string `json:"serviceId"`
	PickupDate          string `json:"pickupDate"`
	SpecialInstructions string `json:"specialInstructions"`
	Total               Amount `json:"total"`
}

// Amount is a decimal price as written by the API. The zero value means "no
// amount" and encodes as "".
type Amount string

func (a Amount) IsZero() bool { return a == "" }

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseFloat(string(a), 64); err != nil {
		return nil, fmt.Errorf("amount %q is not a number", string(a))
	}
	return []byte(a), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s != "" {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return fmt.Errorf("amount %q is not a number", s)
			}
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// flexString accepts JSON strings, numbers, booleans and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*f = flexString(b)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported value %s", string(b))
		}
		*f = flexString(n.String())
	}
	return nil
}
