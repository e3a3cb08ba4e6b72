package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	ProjectStatusActive = "ACTIVE"
	ProjectStatusFunded = "FUNDED"
	ProjectStatusClosed = "CLOSED"
)

// Project categories shown on the crowdfunding pages.
var ProjectCategories = []string{"residential", "commercial", "land", "hospitality"}

const (
	NegotiationStatusOpen     = "OPEN"
	NegotiationStatusAgreed   = "AGREED"
	NegotiationStatusDeclined = "DECLINED"
	NegotiationStatusExpired  = "EXPIRED"
)

const (
	ReferralStatusPending    = "PENDING"
	ReferralStatusSuccessful = "SUCCESSFUL"
)

const (
	ValuationStatusPending   = "PENDING"
	ValuationStatusCompleted = "COMPLETED"
	ValuationStatusRejected  = "REJECTED"
)

var ValuationPropertyTypes = []string{"apartment", "villa", "land", "commercial", "building"}
var ValuationPurposes = []string{"sale", "purchase", "financing", "other"}

const (
	WalletTxReferralCommission = "REFERRAL_COMMISSION"
	WalletTxReferralMilestone  = "REFERRAL_MILESTONE"
	WalletTxEarlyBirdBonus     = "EARLY_BIRD_BONUS"
)

const (
	NotifReferralJoined     = "REFERRAL_JOINED"
	NotifReferralCommission = "REFERRAL_COMMISSION"
	NotifProjectBacked      = "PROJECT_BACKED"
	NotifNegotiationOpened  = "NEGOTIATION_OPENED"
	NotifNegotiationMessage = "NEGOTIATION_MESSAGE"
	NotifNegotiationClosed  = "NEGOTIATION_CLOSED"
	NotifValuationCompleted = "VALUATION_COMPLETED"
)

const (
	LeaderboardReferrers = "referrers"
	LeaderboardBackers   = "backers"
)

var Leaderboards = []string{LeaderboardReferrers, LeaderboardBackers}

const Currency = "SAR"

// HalalasPerRiyal converts SAR amounts to the minor unit stored everywhere.
const HalalasPerRiyal = 100

// Contains reports whether v is one of the allowed values.
func Contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
