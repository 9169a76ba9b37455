package services

import "charity-run-backend/internal/models"

// EarlyBirdRemaining computes the open early-bird slots for a category.
// Never negative, even if claims outnumber capacity.
func EarlyBirdRemaining(capacity int, claims int64) int {
	remaining := capacity - int(claims)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResolveUnitPrice returns the per-participant price for one cart entry.
//
// totalParticipants is the participant count for this category summed across
// the whole cart, not just the current entry; the community tiers are keyed
// on that total. earlyBirdRemaining only matters for individual entries.
//
// Precedence: family bundle > early bird > individual base > community tiers.
// Tier bounds are inclusive on both ends; a nil max means unbounded.
func ResolveUnitPrice(cat *models.RaceCategory, registrationType string, totalParticipants, earlyBirdRemaining int) int {
	if registrationType == models.RegistrationFamily && cat.BundlePrice != nil {
		return *cat.BundlePrice
	}

	if registrationType == models.RegistrationIndividual {
		if earlyBirdRemaining > 0 {
			return cat.EarlyBirdPrice
		}
		return cat.BasePrice
	}

	// Community pricing: evaluate tiers top-down.
	if totalParticipants >= cat.Tier3Min && cat.Tier3Price > 0 {
		return cat.Tier3Price
	}
	if inTier(totalParticipants, cat.Tier2Min, cat.Tier2Max) && cat.Tier2Price > 0 {
		return cat.Tier2Price
	}
	if inTier(totalParticipants, cat.Tier1Min, cat.Tier1Max) && cat.Tier1Price > 0 {
		return cat.Tier1Price
	}
	return cat.BasePrice
}

func inTier(total, min int, max *int) bool {
	if total < min {
		return false
	}
	if max != nil && total > *max {
		return false
	}
	return true
}
