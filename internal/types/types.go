package types

import "github.com/arjunkv/auction-backend/internal/engine"

// ClientMessage is one inbound command on the auction channel. Type names
// follow the operator console's event vocabulary.
type ClientMessage struct {
	Type     string `json:"type"` // start_auction | place_bid | undo_bid | end_auction | trigger_lucky_dip | update_status | request_auction_state
	PlayerID int64  `json:"player_id,omitempty"`
	TeamID   int64  `json:"team_id,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ServerMessage is one outbound event. auction_update carries the full lot
// state plus a version so viewers can detect missed broadcasts and resync.
type ServerMessage struct {
	Type       string        `json:"type"` // auction_update | new_bid | auction_ended | error
	Version    int           `json:"version,omitempty"`
	State      *engine.State `json:"state,omitempty"`
	NextMinBid int64         `json:"next_min_bid,omitempty"`
	Amount     int64         `json:"amount,omitempty"`
	Ended      *AuctionEnded `json:"ended,omitempty"`
	Error      string        `json:"error,omitempty"`
	TeamName   string        `json:"team_name,omitempty"`
}

// AuctionEnded is fired once per finalize; viewers use it for the
// sold/unsold celebration overlays.
type AuctionEnded struct {
	Success bool            `json:"success"`
	Players []engine.Player `json:"players"`
	SoldTo  *engine.Leader  `json:"sold_to,omitempty"`
	Price   int64           `json:"price,omitempty"`
	IsCombo bool            `json:"is_combo"`
}
