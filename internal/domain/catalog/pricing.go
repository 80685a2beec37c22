package catalog

import (
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain"
	"github.com/Shine-Mobile-Detailing/service-dispatch/internal/domain/booking"
	"github.com/google/uuid"
)

// QuoteLine is one priced item in a quote.
type QuoteLine struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
}

// Quote is the itemized result of a price computation. All amounts are
// cents; subtotal and total are equal until discounts exist.
type Quote struct {
	Services      []QuoteLine `json:"services"`
	AddOns        []QuoteLine `json:"add_ons"`
	SubtotalCents int64       `json:"subtotal_cents"`
	TotalCents    int64       `json:"total_cents"`
}

// ComputeQuote prices the given services and add-ons for a vehicle type.
// Inactive items and services without a price for the vehicle type are
// omitted from the result rather than failing the whole quote: an item
// that became unavailable between quote and submission must degrade to
// "missing", not to an error or a zero price. The input order of
// services is preserved.
func ComputeQuote(vehicleType booking.VehicleType, services []*Service, addOns []*AddOn) (*Quote, error) {
	if !vehicleType.IsValid() {
		return nil, domain.NewInvalidVehicleTypeError(string(vehicleType))
	}

	quote := &Quote{
		Services: make([]QuoteLine, 0, len(services)),
		AddOns:   make([]QuoteLine, 0, len(addOns)),
	}

	for _, svc := range services {
		if svc == nil || !svc.Active() {
			continue
		}
		price, ok := svc.PriceFor(vehicleType)
		if !ok || price <= 0 {
			continue
		}
		quote.Services = append(quote.Services, QuoteLine{
			ID:         svc.ID(),
			Name:       svc.Name(),
			PriceCents: price,
		})
		quote.SubtotalCents += price
	}

	for _, addOn := range addOns {
		if addOn == nil || !addOn.Active() {
			continue
		}
		quote.AddOns = append(quote.AddOns, QuoteLine{
			ID:         addOn.ID(),
			Name:       addOn.Name(),
			PriceCents: addOn.PriceCents(),
		})
		quote.SubtotalCents += addOn.PriceCents()
	}

	quote.TotalCents = quote.SubtotalCents
	return quote, nil
}
