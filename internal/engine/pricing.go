package engine

// PriceMode selects how a combo's base price is derived from the
// configured per-lot base price.
type PriceMode string

const (
	PricePerCombo  PriceMode = "per_combo"
	PricePerPlayer PriceMode = "per_player"
)

// Config is the auction configuration captured at lot start. It stays
// fixed for the life of a lot even if the stored config changes mid-lot.
type Config struct {
	BasePrice      int64
	SquadSize      int
	Tier1Threshold int64
	Tier1Increment int64
	Tier2Threshold int64
	Tier2Increment int64
	Tier3Increment int64
	ComboMode      bool
	ComboSize      int
	ComboPriceMode PriceMode
	HasCaptain     bool
	CaptainPrice   int64
	HasSponsor     bool
}

// StartingPrice computes the opening bid for a lot. A combo opens at the
// configured base price, multiplied by member count in per_player mode.
// A single player opens at their own base price, falling back to the
// configured base price when unset.
func StartingPrice(cfg Config, players []Player) int64 {
	if isCombo(players) {
		if cfg.ComboPriceMode == PricePerPlayer {
			return cfg.BasePrice * int64(len(players))
		}
		return cfg.BasePrice
	}
	if len(players) == 1 && players[0].BasePrice > 0 {
		return players[0].BasePrice
	}
	return cfg.BasePrice
}

// TargetRosterSize is the number of players a full squad holds. SquadSize
// counts combos when combo mode is on, so it scales by ComboSize.
func TargetRosterSize(cfg Config) int {
	if cfg.ComboMode {
		size := cfg.ComboSize
		if size < 1 {
			size = 1
		}
		return cfg.SquadSize * size
	}
	return cfg.SquadSize
}

// ReserveNeeded is the budget a team must keep aside before a bid is
// accepted: enough to buy every remaining mandatory slot at base price,
// plus the captain fee if that slot is still open. rosterCount is the
// team's current roster including reserved slots; lotSize is the number of
// players the pending purchase would add.
func ReserveNeeded(cfg Config, rosterCount, lotSize int, captainFilled bool) int64 {
	remaining := TargetRosterSize(cfg) - (rosterCount + lotSize)
	if remaining < 0 {
		remaining = 0
	}

	var reserve int64
	if cfg.ComboMode {
		size := cfg.ComboSize
		if size < 1 {
			size = 1
		}
		perCombo := cfg.BasePrice
		if cfg.ComboPriceMode == PricePerPlayer {
			perCombo = cfg.BasePrice * int64(size)
		}
		reserve = int64(remaining/size) * perCombo
	} else {
		reserve = int64(remaining) * cfg.BasePrice
	}

	if cfg.HasCaptain && !captainFilled {
		reserve += cfg.CaptainPrice
	}
	return reserve
}

// Increment returns the bid step applicable at the given price. Steps grow
// in tiers as the price crosses the configured thresholds.
func Increment(cfg Config, current int64) int64 {
	switch {
	case current < cfg.Tier1Threshold:
		return cfg.Tier1Increment
	case current < cfg.Tier2Threshold:
		return cfg.Tier2Increment
	default:
		return cfg.Tier3Increment
	}
}

// NextMinimumBid is the advisory next bid for the open lot: the starting
// price until someone bids, then current plus the tier increment. The
// server only enforces strict-greater-than; the step size is pricing
// guidance for clients.
func NextMinimumBid(s State) int64 {
	if s.Status != StatusBidding {
		return 0
	}
	if s.Leader == nil {
		return s.StartingPrice
	}
	return s.CurrentBid + Increment(s.Config, s.CurrentBid)
}
