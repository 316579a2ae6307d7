package gormstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arjunkv/auction-backend/internal/engine"
	"github.com/arjunkv/auction-backend/internal/store"
)

// Store implements store.TeamLedger, store.PlayerRegistry,
// store.ConfigStore and store.Directory on a single gorm handle.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to Postgres, migrates the schema and seeds the config row.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.AutoMigrate(&store.Team{}, &store.Player{}, &store.AuctionConfig{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	seed := store.DefaultConfig()
	if err := db.Where(store.AuctionConfig{ID: 1}).FirstOrCreate(&seed).Error; err != nil {
		return nil, fmt.Errorf("seeding auction config: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) GetTeam(ctx context.Context, id int64) (store.TeamView, error) {
	var t store.Team
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.TeamView{}, store.ErrNotFound
		}
		return store.TeamView{}, fmt.Errorf("loading team %d: %w", id, err)
	}

	var owned int64
	if err := s.db.WithContext(ctx).Model(&store.Player{}).
		Where("team_id = ?", id).Count(&owned).Error; err != nil {
		return store.TeamView{}, fmt.Errorf("counting roster for team %d: %w", id, err)
	}

	captainFilled := t.CaptainName != ""
	if !captainFilled {
		var n int64
		if err := s.db.WithContext(ctx).Model(&store.Player{}).
			Where("team_id = ? AND is_captain", id).Count(&n).Error; err != nil {
			return store.TeamView{}, fmt.Errorf("checking captain slot for team %d: %w", id, err)
		}
		captainFilled = n > 0
	}

	return store.TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Budget:        t.Budget,
		PlayersOwned:  int(owned),
		CaptainFilled: captainFilled,
		SponsorFilled: t.SponsorName != "",
	}, nil
}

// FinalizeSale debits the winning bid and marks every lot member sold in
// one transaction. The debit is conditional on the current budget, so a
// purse edited since the bid was accepted cannot go negative.
func (s *Store) FinalizeSale(ctx context.Context, teamID int64, total int64, sales []engine.Sale) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&store.Team{}).
			Where("id = ? AND budget >= ?", teamID, total).
			UpdateColumn("budget", gorm.Expr("budget - ?", total))
		if res.Error != nil {
			return fmt.Errorf("debiting team %d: %w", teamID, res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrInsufficientBudget
		}

		for _, sale := range sales {
			res := tx.Model(&store.Player{}).
				Where("id = ?", sale.PlayerID).
				Updates(map[string]any{
					"status":     "sold",
					"team_id":    teamID,
					"sold_price": sale.Price,
				})
			if res.Error != nil {
				return fmt.Errorf("assigning player %d: %w", sale.PlayerID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("assigning player %d: %w", sale.PlayerID, store.ErrNotFound)
			}
		}
		return nil
	})
}

func (s *Store) GetPlayer(ctx context.Context, id int64) (store.Player, error) {
	var p store.Player
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Player{}, store.ErrNotFound
		}
		return store.Player{}, fmt.Errorf("loading player %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) GetComboMembers(ctx context.Context, comboID string) ([]store.Player, error) {
	var players []store.Player
	if err := s.db.WithContext(ctx).
		Where("combo_id = ?", comboID).Order("id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("loading combo %s: %w", comboID, err)
	}
	return players, nil
}

// MarkUnsold is status-only: team and sold-price columns are untouched so
// a passed lot leaves no residue on the players.
func (s *Store) MarkUnsold(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&store.Player{}).
		Where("id IN ?", ids).
		UpdateColumn("status", "unsold")
	if res.Error != nil {
		return fmt.Errorf("marking players unsold: %w", res.Error)
	}
	return nil
}

// Get implements store.ConfigStore.
func (s *Store) Get(ctx context.Context) (engine.Config, error) {
	row, err := s.Config(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	return row.Engine(), nil
}

// Config returns the settings row, backfilling defaults for columns left
// NULL or zero by older saves.
func (s *Store) Config(ctx context.Context) (store.AuctionConfig, error) {
	var row store.AuctionConfig
	err := s.db.WithContext(ctx).First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.DefaultConfig(), nil
	}
	if err != nil {
		return store.AuctionConfig{}, fmt.Errorf("loading auction config: %w", err)
	}

	def := store.DefaultConfig()
	if row.BasePrice == 0 {
		row.BasePrice = def.BasePrice
	}
	if row.SquadSize == 0 {
		row.SquadSize = def.SquadSize
	}
	if row.Tier1Increment == 0 {
		row.Tier1Threshold = def.Tier1Threshold
		row.Tier1Increment = def.Tier1Increment
		row.Tier2Threshold = def.Tier2Threshold
		row.Tier2Increment = def.Tier2Increment
		row.Tier3Increment = def.Tier3Increment
	}
	if row.ComboSize == 0 {
		row.ComboSize = def.ComboSize
	}
	if row.ComboBasePriceMode == "" {
		row.ComboBasePriceMode = def.ComboBasePriceMode
	}
	return row, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]store.TeamSummary, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	target := engine.TargetRosterSize(cfg.Engine())

	var teams []store.Team
	if err := s.db.WithContext(ctx).Order("id").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}

	type row struct {
		TeamID int64
		N      int
	}
	var counts []row
	if err := s.db.WithContext(ctx).Model(&store.Player{}).
		Select("team_id AS team_id, COUNT(*) AS n").
		Where("team_id IS NOT NULL").
		Group("team_id").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("counting rosters: %w", err)
	}
	owned := make(map[int64]int, len(counts))
	for _, c := range counts {
		owned[c.TeamID] = c.N
	}

	out := make([]store.TeamSummary, 0, len(teams))
	for _, t := range teams {
		n := owned[t.ID]
		if t.CaptainName != "" {
			n++
		}
		if cfg.HasSponsorPlayer && t.SponsorName != "" {
			n++
		}
		out = append(out, store.TeamSummary{Team: t, PlayerCount: n, TargetSize: target})
	}
	return out, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]store.Player, error) {
	var players []store.Player
	if err := s.db.WithContext(ctx).Order("id").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

func (s *Store) TeamSquad(ctx context.Context, teamID int64) ([]store.Player, error) {
	var players []store.Player
	if err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).Order("sold_price DESC").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("loading squad for team %d: %w", teamID, err)
	}
	return players, nil
}
