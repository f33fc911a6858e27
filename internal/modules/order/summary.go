// README: Human-readable operator notification text.
package order

import (
	"fmt"
	"strings"

	"mashwar/internal/types"
)

// creationSummary renders the one-line text the operator channel receives
// when an order is created. The wording is stable: operators grep it.
func creationSummary(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "new %s order %s: %s -> %s", o.Category, o.ID, originLabel(o), o.Dropoff.VillageName)
	if o.Vehicle != "" {
		fmt.Fprintf(&b, " by %s", o.Vehicle)
	}
	fmt.Fprintf(&b, ", %d %s, customer %s", o.Price.Amount, o.Price.Currency, o.CustomerPhone)
	return b.String()
}

func acceptanceSummary(o *Order) string {
	if o.Driver == nil {
		return fmt.Sprintf("order %s accepted", o.ID)
	}
	return fmt.Sprintf("order %s accepted by %s (%s) for %d %s, customer %s",
		o.ID, o.Driver.Name, o.Driver.Phone, o.Price.Amount, o.Price.Currency, o.CustomerPhone)
}

func originLabel(o *Order) string {
	if o.Category == types.CategoryPharmacy {
		return "pharmacy"
	}
	if o.RestaurantName != "" {
		return o.RestaurantName
	}
	if o.Pickup == nil {
		return "-"
	}
	if o.Pickup.VillageName != "" {
		return o.Pickup.VillageName
	}
	return o.Pickup.Address
}
