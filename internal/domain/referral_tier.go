package domain

// Tier is a referral-program rank.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// TierInfo describes a tier and the commission it pays on referred backings.
type TierInfo struct {
	Tier           Tier   `json:"tier"`
	Name           string `json:"name"`
	Badge          string `json:"badge"`
	CommissionRate int    `json:"commission_rate"` // percent
	MinReferrals   int    `json:"min_referrals"`
}

// tiers is ordered by ascending threshold.
var tiers = []TierInfo{
	{Tier: TierBronze, Name: "برونزي", Badge: "🥉", CommissionRate: 5, MinReferrals: 0},
	{Tier: TierSilver, Name: "فضي", Badge: "🥈", CommissionRate: 8, MinReferrals: 10},
	{Tier: TierGold, Name: "ذهبي", Badge: "🥇", CommissionRate: 12, MinReferrals: 20},
	{Tier: TierPlatinum, Name: "بلاتيني", Badge: "💎", CommissionRate: 15, MinReferrals: 50},
}

// Tiers returns the tier table, lowest first.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

func tierIndex(successful int) int {
	idx := 0
	for i, t := range tiers {
		if successful >= t.MinReferrals {
			idx = i
		}
	}
	return idx
}

// ClassifyTier maps a count of successful referrals to its tier. Negative counts are BRONZE.
func ClassifyTier(successful int) TierInfo {
	return tiers[tierIndex(successful)]
}

// NextTier returns the tier above the current one; false at the top tier.
func NextTier(successful int) (TierInfo, bool) {
	idx := tierIndex(successful)
	if idx == len(tiers)-1 {
		return TierInfo{}, false
	}
	return tiers[idx+1], true
}

// TierProgress is successful / next threshold as a percentage in [0, 100].
func TierProgress(successful int) float64 {
	next, ok := NextTier(successful)
	if !ok {
		return 100
	}
	if successful <= 0 {
		return 0
	}
	p := float64(successful) / float64(next.MinReferrals) * 100
	if p > 100 {
		return 100
	}
	return p
}

// ReferralsToNextTier is how many more successful referrals reach the next tier (0 at the top).
func ReferralsToNextTier(successful int) int {
	next, ok := NextTier(successful)
	if !ok {
		return 0
	}
	if successful < 0 {
		successful = 0
	}
	return next.MinReferrals - successful
}

// Commission is the referrer's share of amount (halalas) at the tier's rate, truncated.
func Commission(amount int64, t TierInfo) int64 {
	if amount <= 0 {
		return 0
	}
	return amount * int64(t.CommissionRate) / 100
}

// Milestone is a fixed referral goal with a one-time bonus.
type Milestone struct {
	Count        int    `json:"count"`
	Title        string `json:"title"`
	Reward       string `json:"reward"`
	BonusHalalas int64  `json:"bonus_halalas"`
	Achieved     bool   `json:"achieved"`
}

var milestones = []Milestone{
	{Count: 1, Title: "أول إحالة", Reward: "مكافأة ترحيبية 50 ريال", BonusHalalas: 50 * HalalasPerRiyal},
	{Count: 10, Title: "المستوى الفضي", Reward: "عمولة 8% ومكافأة 200 ريال", BonusHalalas: 200 * HalalasPerRiyal},
	{Count: 20, Title: "المستوى الذهبي", Reward: "عمولة 12% ومكافأة 500 ريال", BonusHalalas: 500 * HalalasPerRiyal},
	{Count: 50, Title: "المستوى البلاتيني", Reward: "عمولة 15% ومكافأة 1500 ريال", BonusHalalas: 1500 * HalalasPerRiyal},
	{Count: 100, Title: "سفير بذرة", Reward: "مكافأة 5000 ريال ودعوة لفعاليات المستثمرين", BonusHalalas: 5000 * HalalasPerRiyal},
}

// Milestones returns the milestone list with Achieved set for the given count.
func Milestones(successful int) []Milestone {
	out := make([]Milestone, len(milestones))
	for i, m := range milestones {
		m.Achieved = successful >= m.Count
		out[i] = m
	}
	return out
}
