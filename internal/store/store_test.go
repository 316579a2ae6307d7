package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arjunkv/auction-backend/internal/engine"
)

func TestDefaultConfigMapsToEngine(t *testing.T) {
	cfg := DefaultConfig().Engine()

	assert.Equal(t, int64(10000), cfg.BasePrice)
	assert.Equal(t, 11, cfg.SquadSize)
	assert.Equal(t, int64(2000), cfg.Tier1Increment)
	assert.Equal(t, int64(5000), cfg.Tier2Increment)
	assert.Equal(t, int64(10000), cfg.Tier3Increment)
	assert.Equal(t, engine.PricePerCombo, cfg.ComboPriceMode)
	assert.False(t, cfg.ComboMode)
	assert.False(t, cfg.HasCaptain)
	assert.True(t, cfg.HasSponsor)

	// The defaults keep the reserve rule meaningful out of the box.
	assert.Equal(t, int64(100000), engine.ReserveNeeded(cfg, 0, 1, true))
}

func TestEngineConversionCarriesComboFields(t *testing.T) {
	c := AuctionConfig{
		BasePrice:          5000,
		SquadSize:          8,
		ComboMode:          true,
		ComboSize:          3,
		ComboBasePriceMode: string(engine.PricePerPlayer),
		HasCaptainPlayer:   true,
		CaptainPrice:       20000,
	}

	cfg := c.Engine()
	assert.True(t, cfg.ComboMode)
	assert.Equal(t, 3, cfg.ComboSize)
	assert.Equal(t, engine.PricePerPlayer, cfg.ComboPriceMode)
	assert.Equal(t, int64(20000), cfg.CaptainPrice)
	assert.Equal(t, 24, engine.TargetRosterSize(cfg))
}

func TestPlayerLotConversion(t *testing.T) {
	comboID := "spin-twins"
	comboName := "Spin Twins"
	p := Player{
		ID:               7,
		Name:             "Ashwin",
		Category:         "bowler",
		AuctionSet:       "A",
		BasePrice:        15000,
		IsIcon:           true,
		ComboID:          &comboID,
		ComboDisplayName: &comboName,
	}

	lot := p.Lot()
	assert.Equal(t, int64(7), lot.ID)
	assert.Equal(t, "Ashwin", lot.Name)
	assert.Equal(t, int64(15000), lot.BasePrice)
	assert.True(t, lot.IsIcon)
	assert.Equal(t, "spin-twins", lot.ComboID)
	assert.Equal(t, "Spin Twins", lot.ComboName)
}

func TestPlayerLotConversionWithoutCombo(t *testing.T) {
	lot := Player{ID: 3, Name: "Sunil", BasePrice: 10000}.Lot()
	assert.Empty(t, lot.ComboID)
	assert.Empty(t, lot.ComboName)
	assert.False(t, lot.IsCaptain)
}
