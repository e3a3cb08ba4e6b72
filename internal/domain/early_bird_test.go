package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardForRank(t *testing.T) {
	assert.Equal(t, RewardFounder, RewardForRank(1).Tier)
	assert.Equal(t, RewardFounder, RewardForRank(100).Tier)
	assert.Equal(t, RewardPioneer, RewardForRank(101).Tier)
	assert.Equal(t, RewardPioneer, RewardForRank(500).Tier)
	assert.Equal(t, RewardEarlyAdopter, RewardForRank(501).Tier)
	assert.Equal(t, RewardEarlyAdopter, RewardForRank(1000).Tier)
	assert.Equal(t, RewardSupporter, RewardForRank(1001).Tier)
	assert.Equal(t, RewardSupporter, RewardForRank(0).Tier)
	assert.Equal(t, int64(0), RewardForRank(5000).BonusHalalas)
}

func TestRemainingSlots(t *testing.T) {
	founder := RewardForRank(1)
	pioneer := RewardForRank(200)
	supporter := RewardForRank(2000)

	assert.Equal(t, 100, RemainingSlots(founder, 0))
	assert.Equal(t, 60, RemainingSlots(founder, 40))
	assert.Equal(t, 0, RemainingSlots(founder, 100))
	assert.Equal(t, 400, RemainingSlots(pioneer, 40))
	assert.Equal(t, 350, RemainingSlots(pioneer, 150))
	assert.Equal(t, 0, RemainingSlots(pioneer, 900))
	assert.Equal(t, -1, RemainingSlots(supporter, 10))
}
