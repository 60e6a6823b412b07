package forms

import (
	"net/url"

	"github.com/fabclean/fabclean-web/services/web-service/internal/api"
)

type OrderForm struct {
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	Address             string
	ServiceID           string
	PickupDate          string
	SpecialInstructions string
	Total               api.Amount
}

// OrderFormFromValues reads a posted order form. Any submitted total is
// ignored; call Recompute to derive it.
func OrderFormFromValues(v url.Values) OrderForm {
	return OrderForm{
		CustomerName:        v.Get("customerName"),
		CustomerEmail:       v.Get("customerEmail"),
		CustomerPhone:       v.Get("customerPhone"),
		Address:             v.Get("address"),
		ServiceID:           v.Get("serviceId"),
		PickupDate:          v.Get("pickupDate"),
		SpecialInstructions: v.Get("specialInstructions"),
	}
}

// ComputeTotal returns the price of the selected service, or the empty amount
// when nothing is selected or the id is not in the list.
func ComputeTotal(services []api.Service, selectedID string) api.Amount {
	if selectedID == "" {
		return ""
	}
	for _, s := range services {
		if s.ID == selectedID {
			return s.Price
		}
	}
	return ""
}

// HasService reports whether id names an entry of services.
func HasService(services []api.Service, id string) bool {
	for _, s := range services {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (f *OrderForm) Recompute(services []api.Service) {
	f.Total = ComputeTotal(services, f.ServiceID)
}

// Prefill overwrites the customer fields.
func (f *OrderForm) Prefill(name, phone, email string) {
	f.CustomerName = name
	f.CustomerPhone = phone
	f.CustomerEmail = email
}

// Validate reports a missing service selection.
func (f OrderForm) Validate() error {
	if f.ServiceID == "" {
		return &ValidationError{Message: "Please select a service"}
	}
	return nil
}

// Request builds the order payload. Address is collected but not sent.
func (f OrderForm) Request() api.OrderRequest {
	return api.OrderRequest{
		CustomerName:        f.CustomerName,
		CustomerEmail:       f.CustomerEmail,
		CustomerPhone:       f.CustomerPhone,
		ServiceID:           f.ServiceID,
		PickupDate:          f.PickupDate,
		SpecialInstructions: f.SpecialInstructions,
		Total:               f.Total,
	}
}

// ResetAfterSubmit clears the per-order fields and keeps the customer's.
func (f *OrderForm) ResetAfterSubmit() {
	f.Address = ""
	f.ServiceID = ""
	f.PickupDate = ""
	f.SpecialInstructions = ""
	f.Total = ""
}
