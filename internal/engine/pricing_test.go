package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetRosterSize(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 11, TargetRosterSize(cfg))

	cfg.ComboMode = true
	cfg.ComboSize = 2
	assert.Equal(t, 22, TargetRosterSize(cfg))
}

func TestReserveNeeded(t *testing.T) {
	cases := []struct {
		name          string
		cfg           func(Config) Config
		rosterCount   int
		lotSize       int
		captainFilled bool
		want          int64
	}{
		{
			name:        "fresh team buying its first player",
			cfg:         func(c Config) Config { return c },
			rosterCount: 0,
			lotSize:     1,
			want:        100000, // 10 remaining slots at 10000
		},
		{
			name:        "last slot needs no reserve",
			cfg:         func(c Config) Config { return c },
			rosterCount: 10,
			lotSize:     1,
			want:        0,
		},
		{
			name:        "overshoot clamps to zero",
			cfg:         func(c Config) Config { return c },
			rosterCount: 11,
			lotSize:     1,
			want:        0,
		},
		{
			name: "combo mode per_combo reserves per remaining combo",
			cfg: func(c Config) Config {
				c.ComboMode = true
				c.SquadSize = 3
				c.ComboSize = 2
				return c
			},
			rosterCount: 0,
			lotSize:     2,
			want:        20000, // 2 combos left at 10000 each
		},
		{
			name: "combo mode per_player scales by combo size",
			cfg: func(c Config) Config {
				c.ComboMode = true
				c.SquadSize = 3
				c.ComboSize = 2
				c.ComboPriceMode = PricePerPlayer
				return c
			},
			rosterCount: 0,
			lotSize:     2,
			want:        40000, // 2 combos left at 20000 each
		},
		{
			name: "open captain slot adds the captain fee",
			cfg: func(c Config) Config {
				c.HasCaptain = true
				c.CaptainPrice = 50000
				return c
			},
			rosterCount: 0,
			lotSize:     1,
			want:        150000,
		},
		{
			name: "filled captain slot adds nothing",
			cfg: func(c Config) Config {
				c.HasCaptain = true
				c.CaptainPrice = 50000
				return c
			},
			rosterCount:   0,
			lotSize:       1,
			captainFilled: true,
			want:          100000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReserveNeeded(tc.cfg(testConfig()), tc.rosterCount, tc.lotSize, tc.captainFilled)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIncrementTiers(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, int64(2000), Increment(cfg, 5000))
	assert.Equal(t, int64(5000), Increment(cfg, 10000))
	assert.Equal(t, int64(5000), Increment(cfg, 19999))
	assert.Equal(t, int64(10000), Increment(cfg, 20000))
	assert.Equal(t, int64(10000), Increment(cfg, 500000))
}

func TestNextMinimumBid(t *testing.T) {
	cfg := testConfig()

	assert.Zero(t, NextMinimumBid(NewIdleState()))

	fresh := startedLot(t, cfg, Player{ID: 1, BasePrice: 12000})
	assert.Equal(t, int64(12000), NextMinimumBid(fresh), "no leader: next bid is the starting price")

	led := bid(t, fresh, richTeam(1, "Lions"), 12000)
	assert.Equal(t, int64(17000), NextMinimumBid(led), "12000 sits in tier 2")
}

func TestStartingPrice(t *testing.T) {
	cfg := testConfig()

	require.Equal(t, int64(15000), StartingPrice(cfg, []Player{{ID: 1, BasePrice: 15000}}))
	require.Equal(t, int64(10000), StartingPrice(cfg, []Player{{ID: 1}}), "falls back to config base")

	combo := []Player{{ID: 1, ComboID: "c"}, {ID: 2, ComboID: "c"}}
	require.Equal(t, int64(10000), StartingPrice(cfg, combo))

	cfg.ComboPriceMode = PricePerPlayer
	require.Equal(t, int64(20000), StartingPrice(cfg, combo))
}
