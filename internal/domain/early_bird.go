package domain

type RewardTier string

const (
	RewardFounder      RewardTier = "FOUNDER"
	RewardPioneer      RewardTier = "PIONEER"
	RewardEarlyAdopter RewardTier = "EARLY_ADOPTER"
	RewardSupporter    RewardTier = "SUPPORTER"
)

// RewardTierInfo is an early-bird reward bracket. MaxRank 0 means unbounded.
type RewardTierInfo struct {
	Tier         RewardTier `json:"tier"`
	Name         string     `json:"name"`
	MinRank      int        `json:"min_rank"`
	MaxRank      int        `json:"max_rank"`
	FeeDiscount  int        `json:"fee_discount"` // percent off platform fees
	BonusHalalas int64      `json:"bonus_halalas"`
	Description  string     `json:"description"`
}

var rewardTiers = []RewardTierInfo{
	{Tier: RewardFounder, Name: "المؤسسون", MinRank: 1, MaxRank: 100, FeeDiscount: 50, BonusHalalas: 500 * HalalasPerRiyal, Description: "خصم 50% على الرسوم ورصيد 500 ريال"},
	{Tier: RewardPioneer, Name: "الرواد", MinRank: 101, MaxRank: 500, FeeDiscount: 30, BonusHalalas: 200 * HalalasPerRiyal, Description: "خصم 30% على الرسوم ورصيد 200 ريال"},
	{Tier: RewardEarlyAdopter, Name: "المتبنون الأوائل", MinRank: 501, MaxRank: 1000, FeeDiscount: 15, BonusHalalas: 50 * HalalasPerRiyal, Description: "خصم 15% على الرسوم ورصيد 50 ريال"},
	{Tier: RewardSupporter, Name: "الداعمون", MinRank: 1001, MaxRank: 0, FeeDiscount: 0, BonusHalalas: 0, Description: "شارة الداعم"},
}

func RewardTiers() []RewardTierInfo {
	out := make([]RewardTierInfo, len(rewardTiers))
	copy(out, rewardTiers)
	return out
}

// RewardForRank looks up the bracket for a 1-based registration rank.
func RewardForRank(rank int) RewardTierInfo {
	if rank <= 0 {
		return rewardTiers[len(rewardTiers)-1]
	}
	for _, t := range rewardTiers {
		if rank >= t.MinRank && (t.MaxRank == 0 || rank <= t.MaxRank) {
			return t
		}
	}
	return rewardTiers[len(rewardTiers)-1]
}

// RemainingSlots is how many ranks are still open in a bounded tier given the registered count.
// Unbounded tiers report -1.
func RemainingSlots(t RewardTierInfo, registered int) int {
	if t.MaxRank == 0 {
		return -1
	}
	if registered >= t.MaxRank {
		return 0
	}
	if registered < t.MinRank-1 {
		return t.MaxRank - t.MinRank + 1
	}
	return t.MaxRank - registered
}
