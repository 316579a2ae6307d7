package store

import (
	"context"
	"errors"
	"time"

	"github.com/arjunkv/auction-backend/internal/engine"
)

var ErrNotFound = errors.New("record not found")
var ErrInsufficientBudget = errors.New("insufficient budget")

// Team is a franchise with a fixed auction purse. CaptainName and
// OwnerName are pre-assigned slots that count toward the squad.
type Team struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Budget      int64     `gorm:"not null" json:"budget"`
	CaptainName string    `json:"captain_name,omitempty"`
	OwnerName   string    `json:"owner_name,omitempty"`
	SponsorName string    `json:"sponsor_name,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Player is a registry entry. ComboID groups players that are auctioned
// and sold together as one lot.
type Player struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	Category         string    `json:"category,omitempty"`
	AuctionSet       string    `json:"auction_set,omitempty"`
	BasePrice        int64     `json:"base_price"`
	Status           string    `gorm:"default:unsold;index" json:"status"` // unsold | sold | reserved
	TeamID           *int64    `gorm:"index" json:"team_id,omitempty"`
	SoldPrice        *int64    `json:"sold_price,omitempty"`
	IsCaptain        bool      `json:"is_captain"`
	IsIcon           bool      `json:"is_icon"`
	ComboID          *string   `gorm:"index" json:"combo_id,omitempty"`
	ComboDisplayName *string   `json:"combo_display_name,omitempty"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// AuctionConfig is the singleton settings row. Tier thresholds bound the
// bid steps the console suggests; the combo fields shape lot pricing.
type AuctionConfig struct {
	ID                 int64  `gorm:"primaryKey" json:"id"`
	DefaultTeamBudget  int64  `json:"default_team_budget"`
	BasePrice          int64  `json:"base_price"`
	SquadSize          int    `json:"squad_size"`
	Tier1Threshold     int64  `json:"tier1_threshold"`
	Tier1Increment     int64  `json:"tier1_increment"`
	Tier2Threshold     int64  `json:"tier2_threshold"`
	Tier2Increment     int64  `json:"tier2_increment"`
	Tier3Increment     int64  `json:"tier3_increment"`
	ComboMode          bool   `json:"combo_mode"`
	ComboSize          int    `json:"combo_size"`
	ComboBasePriceMode string `json:"combo_base_price_mode"` // per_combo | per_player
	HasCaptainPlayer   bool   `json:"has_captain_player"`
	CaptainPrice       int64  `json:"captain_price"`
	HasSponsorPlayer   bool   `json:"has_sponsor_player"`
}

// DefaultConfig returns the settings used until an operator saves their
// own.
func DefaultConfig() AuctionConfig {
	return AuctionConfig{
		ID:                 1,
		DefaultTeamBudget:  300000,
		BasePrice:          10000,
		SquadSize:          11,
		Tier1Threshold:     10000,
		Tier1Increment:     2000,
		Tier2Threshold:     20000,
		Tier2Increment:     5000,
		Tier3Increment:     10000,
		ComboMode:          false,
		ComboSize:          2,
		ComboBasePriceMode: string(engine.PricePerCombo),
		HasCaptainPlayer:   false,
		CaptainPrice:       0,
		HasSponsorPlayer:   true,
	}
}

// Engine converts the stored row into the engine's config value.
func (c AuctionConfig) Engine() engine.Config {
	return engine.Config{
		BasePrice:      c.BasePrice,
		SquadSize:      c.SquadSize,
		Tier1Threshold: c.Tier1Threshold,
		Tier1Increment: c.Tier1Increment,
		Tier2Threshold: c.Tier2Threshold,
		Tier2Increment: c.Tier2Increment,
		Tier3Increment: c.Tier3Increment,
		ComboMode:      c.ComboMode,
		ComboSize:      c.ComboSize,
		ComboPriceMode: engine.PriceMode(c.ComboBasePriceMode),
		HasCaptain:     c.HasCaptainPlayer,
		CaptainPrice:   c.CaptainPrice,
		HasSponsor:     c.HasSponsorPlayer,
	}
}

// Lot converts a registry player into the engine's lot-member view.
func (p Player) Lot() engine.Player {
	ep := engine.Player{
		ID:         p.ID,
		Name:       p.Name,
		Category:   p.Category,
		AuctionSet: p.AuctionSet,
		BasePrice:  p.BasePrice,
		IsCaptain:  p.IsCaptain,
		IsIcon:     p.IsIcon,
	}
	if p.ComboID != nil {
		ep.ComboID = *p.ComboID
	}
	if p.ComboDisplayName != nil {
		ep.ComboName = *p.ComboDisplayName
	}
	return ep
}

// TeamView is the ledger's read model for bid validation. PlayersOwned is
// purchased players only; the reserved captain/sponsor slots are reported
// separately so the caller can apply the configured counting rules.
type TeamView struct {
	ID            int64
	Name          string
	Budget        int64
	PlayersOwned  int
	CaptainFilled bool
	SponsorFilled bool
}

// TeamSummary is a team plus the derived roster numbers the viewer
// screens show.
type TeamSummary struct {
	Team
	PlayerCount int `json:"player_count"`
	TargetSize  int `json:"target_size"`
}

// TeamLedger is the durable budget/roster collaborator. FinalizeSale is a
// single transaction: a conditional debit of the winning bid plus the
// per-player sold assignments; it fails with ErrInsufficientBudget without
// writing anything when the purse no longer covers the bid.
type TeamLedger interface {
	GetTeam(ctx context.Context, id int64) (TeamView, error)
	FinalizeSale(ctx context.Context, teamID int64, total int64, sales []engine.Sale) error
}

// PlayerRegistry is the player store collaborator.
type PlayerRegistry interface {
	GetPlayer(ctx context.Context, id int64) (Player, error)
	GetComboMembers(ctx context.Context, comboID string) ([]Player, error)
	MarkUnsold(ctx context.Context, ids []int64) error
}

// ConfigStore serves the auction configuration, read-only during a lot.
type ConfigStore interface {
	Get(ctx context.Context) (engine.Config, error)
}

// Directory is the read surface the viewer HTTP endpoints use.
type Directory interface {
	ListTeams(ctx context.Context) ([]TeamSummary, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	TeamSquad(ctx context.Context, teamID int64) ([]Player, error)
	Config(ctx context.Context) (AuctionConfig, error)
}
