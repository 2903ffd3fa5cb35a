package purchase

import (
	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
)

// Descriptor parameterizes the orchestrator per service category: amount
// bounds, whether the amount comes from a priced plan, and whether the
// recipient identity must be verified before funds are committed.
// Bounds are data, not logic; they mirror the aggregator's product limits.
type Descriptor struct {
	Category             wallet.Category
	MinAmount            int64 // 0 when AmountFromPlan
	MaxAmount            int64
	AmountFromPlan       bool
	RequiresVerification bool
}

var catalog = map[wallet.Category]Descriptor{
	wallet.CategoryAirtime: {
		Category:  wallet.CategoryAirtime,
		MinAmount: 50,
		MaxAmount: 50_000,
	},
	wallet.CategoryData: {
		Category:       wallet.CategoryData,
		AmountFromPlan: true,
	},
	wallet.CategoryCable: {
		Category:             wallet.CategoryCable,
		AmountFromPlan:       true,
		RequiresVerification: true,
	},
	wallet.CategoryElectricity: {
		Category:             wallet.CategoryElectricity,
		MinAmount:            500,
		MaxAmount:            500_000,
		RequiresVerification: true,
	},
	wallet.CategoryBetting: {
		Category:             wallet.CategoryBetting,
		MinAmount:            100,
		MaxAmount:            1_000_000,
		RequiresVerification: true,
	},
}

// Lookup returns the descriptor for a category
func Lookup(category wallet.Category) (Descriptor, bool) {
	d, ok := catalog[category]
	return d, ok
}

// serviceID maps a category and its provider field to the aggregator's
// product identifier.
func serviceID(category wallet.Category, in Input) string {
	switch category {
	case wallet.CategoryAirtime:
		return in.Network
	case wallet.CategoryData:
		return in.Network + "-data"
	case wallet.CategoryCable, wallet.CategoryElectricity, wallet.CategoryBetting:
		return in.Provider
	}
	return ""
}
