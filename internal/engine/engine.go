package engine

import (
	"errors"
	"time"
)

var ErrLotInProgress = errors.New("a lot is already open for bidding")
var ErrNotBidding = errors.New("no lot is open for bidding")
var ErrNoSubject = errors.New("lot has no players")
var ErrSelfOutbid = errors.New("team already holds the highest bid")
var ErrBidTooLow = errors.New("bid must be higher than the current bid")
var ErrFirstBidMismatch = errors.New("first bid must equal the starting price")
var ErrReserveExceeded = errors.New("bid would eat into the budget reserved for remaining slots")
var ErrRosterFull = errors.New("purchase would exceed the squad size")
var ErrNothingToUndo = errors.New("no bid to undo")
var ErrNoWinningBid = errors.New("lot has no winning bid")
var ErrLeaderPresent = errors.New("lot still has a winning bid")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Status string

const (
	StatusIdle     Status = "idle"
	StatusLuckyDip Status = "lucky_dip"
	StatusBidding  Status = "bidding"
	StatusSold     Status = "sold"
	StatusUnsold   Status = "unsold"
)

// ValidStatus reports whether s is one of the known lot statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusIdle, StatusLuckyDip, StatusBidding, StatusSold, StatusUnsold:
		return true
	}
	return false
}

// Player is the engine's view of an auctionable player. The registry owns
// the full record; the lot only carries what the displays need.
type Player struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	AuctionSet string `json:"auction_set,omitempty"`
	BasePrice  int64  `json:"base_price"`
	IsCaptain  bool   `json:"is_captain,omitempty"`
	IsIcon     bool   `json:"is_icon,omitempty"`
	ComboID    string `json:"combo_id,omitempty"`
	ComboName  string `json:"combo_name,omitempty"`
}

// Leader identifies the team holding the current highest bid.
type Leader struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}

// BidEntry is one row of the lot's bid history. The first entry is always
// the synthetic starting-price row with TeamID zero.
type BidEntry struct {
	TeamID   int64     `json:"team_id,omitempty"`
	TeamName string    `json:"team_name"`
	Amount   int64     `json:"amount"`
	At       time.Time `json:"at"`
}

// TeamSnapshot is the ledger's answer for one team at bid time.
// RosterCount already includes reserved captain/sponsor slots.
type TeamSnapshot struct {
	ID            int64
	Name          string
	Budget        int64
	RosterCount   int
	CaptainFilled bool
}

// State is the single process-wide lot. It is a value: Apply never mutates
// its argument, so callers can hold the previous state across a rejection.
type State struct {
	Status        Status     `json:"status"`
	Players       []Player   `json:"players,omitempty"`
	IsCombo       bool       `json:"is_combo"`
	ComboName     string     `json:"combo_name,omitempty"`
	StartingPrice int64      `json:"starting_price"`
	CurrentBid    int64      `json:"current_bid"`
	Leader        *Leader    `json:"leader,omitempty"`
	History       []BidEntry `json:"history,omitempty"`
	Config        Config     `json:"-"`
}

func NewIdleState() State {
	return State{Status: StatusIdle}
}

type CommandType string

const (
	CmdStartLot    CommandType = "StartLot"
	CmdPlaceBid    CommandType = "PlaceBid"
	CmdUndoBid     CommandType = "UndoBid"
	CmdLuckyDip    CommandType = "LuckyDip"
	CmdMarkSold    CommandType = "MarkSold"
	CmdMarkUnsold  CommandType = "MarkUnsold"
	CmdForceStatus CommandType = "ForceStatus"
	CmdReset       CommandType = "Reset"
)

// Command carries everything a transition needs, resolved up front by the
// room (players, config, team snapshot). The engine itself does no I/O.
type Command struct {
	Type    CommandType
	Players []Player
	Config  Config
	Team    TeamSnapshot
	Amount  int64
	Status  Status
	At      time.Time
}

type EventType string

const (
	EvtLotStarted   EventType = "LotStarted"
	EvtBidPlaced    EventType = "BidPlaced"
	EvtBidUndone    EventType = "BidUndone"
	EvtLuckyDip     EventType = "LuckyDipShown"
	EvtLotSold      EventType = "LotSold"
	EvtLotPassed    EventType = "LotPassed"
	EvtStatusForced EventType = "StatusForced"
	EvtLotReset     EventType = "LotReset"
)

type Event struct {
	Type     EventType
	TeamID   int64
	TeamName string
	Amount   int64
}

// Apply validates cmd against s and returns the events plus the new state.
// On error the returned state is s unchanged.
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {

	case CmdStartLot:
		// Starting over an open lot would silently abandon its bids.
		if s.Status == StatusBidding {
			return nil, s, ErrLotInProgress
		}
		if len(cmd.Players) == 0 {
			return nil, s, ErrNoSubject
		}
		start := StartingPrice(cmd.Config, cmd.Players)
		ns := State{
			Status:        StatusBidding,
			Players:       cmd.Players,
			IsCombo:       isCombo(cmd.Players),
			ComboName:     comboName(cmd.Players),
			StartingPrice: start,
			CurrentBid:    start,
			History: []BidEntry{
				{TeamName: "Starting Price", Amount: start, At: cmd.At},
			},
			Config: cmd.Config,
		}
		return []Event{{Type: EvtLotStarted, Amount: start}}, ns, nil

	case CmdPlaceBid:
		if s.Status != StatusBidding {
			return nil, s, ErrNotBidding
		}
		if s.Leader != nil && s.Leader.TeamID == cmd.Team.ID {
			return nil, s, ErrSelfOutbid
		}
		if s.Leader == nil {
			if cmd.Amount != s.CurrentBid {
				return nil, s, ErrFirstBidMismatch
			}
		} else if cmd.Amount <= s.CurrentBid {
			return nil, s, ErrBidTooLow
		}
		lotSize := len(s.Players)
		if cmd.Team.RosterCount+lotSize > TargetRosterSize(s.Config) {
			return nil, s, ErrRosterFull
		}
		reserve := ReserveNeeded(s.Config, cmd.Team.RosterCount, lotSize, cmd.Team.CaptainFilled)
		if cmd.Amount > cmd.Team.Budget-reserve {
			return nil, s, ErrReserveExceeded
		}

		ns := s
		ns.CurrentBid = cmd.Amount
		ns.Leader = &Leader{TeamID: cmd.Team.ID, TeamName: cmd.Team.Name}
		ns.History = appendEntry(s.History, BidEntry{
			TeamID:   cmd.Team.ID,
			TeamName: cmd.Team.Name,
			Amount:   cmd.Amount,
			At:       cmd.At,
		})
		ev := Event{Type: EvtBidPlaced, TeamID: cmd.Team.ID, TeamName: cmd.Team.Name, Amount: cmd.Amount}
		return []Event{ev}, ns, nil

	case CmdUndoBid:
		if s.Status != StatusBidding {
			return nil, s, ErrNotBidding
		}
		if len(s.History) <= 1 {
			return nil, s, ErrNothingToUndo
		}
		undone := s.History[len(s.History)-1]
		hist := make([]BidEntry, len(s.History)-1)
		copy(hist, s.History[:len(s.History)-1])
		last := hist[len(hist)-1]

		ns := s
		ns.History = hist
		ns.CurrentBid = last.Amount
		if len(hist) == 1 {
			ns.Leader = nil
		} else {
			ns.Leader = &Leader{TeamID: last.TeamID, TeamName: last.TeamName}
		}
		ev := Event{Type: EvtBidUndone, TeamID: undone.TeamID, TeamName: undone.TeamName, Amount: undone.Amount}
		return []Event{ev}, ns, nil

	case CmdLuckyDip:
		if s.Status == StatusBidding {
			return nil, s, ErrLotInProgress
		}
		if len(cmd.Players) == 0 {
			return nil, s, ErrNoSubject
		}
		ns := State{
			Status:    StatusLuckyDip,
			Players:   cmd.Players,
			IsCombo:   isCombo(cmd.Players),
			ComboName: comboName(cmd.Players),
			Config:    cmd.Config,
		}
		return []Event{{Type: EvtLuckyDip}}, ns, nil

	case CmdMarkSold:
		if s.Status != StatusBidding {
			return nil, s, ErrNotBidding
		}
		if s.Leader == nil {
			return nil, s, ErrNoWinningBid
		}
		ns := s
		ns.Status = StatusSold
		ev := Event{Type: EvtLotSold, TeamID: s.Leader.TeamID, TeamName: s.Leader.TeamName, Amount: s.CurrentBid}
		return []Event{ev}, ns, nil

	case CmdMarkUnsold:
		if s.Status != StatusBidding {
			return nil, s, ErrNotBidding
		}
		if s.Leader != nil {
			return nil, s, ErrLeaderPresent
		}
		ns := s
		ns.Status = StatusUnsold
		return []Event{{Type: EvtLotPassed}}, ns, nil

	case CmdForceStatus:
		// Operator escape hatch. Forcing idle is a full reset so a stuck
		// console never leaves a ghost lot behind.
		if cmd.Status == StatusIdle {
			return []Event{{Type: EvtLotReset}}, NewIdleState(), nil
		}
		ns := s
		ns.Status = cmd.Status
		return []Event{{Type: EvtStatusForced}}, ns, nil

	case CmdReset:
		return []Event{{Type: EvtLotReset}}, NewIdleState(), nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Sale is one player's share of a finalized lot.
type Sale struct {
	PlayerID int64
	Price    int64
}

// Outcome is the ledger write a sold lot requires: one debit of Total and a
// sold-price assignment per member.
type Outcome struct {
	TeamID   int64
	TeamName string
	Total    int64
	Sales    []Sale
}

// SaleOutcome computes the ledger mutation for a bidding lot with a leader.
// The winning bid is split evenly across combo members; any indivisible
// remainder lands on the first member so the per-player prices sum to the
// debited total.
func SaleOutcome(s State) (Outcome, error) {
	if s.Status != StatusBidding {
		return Outcome{}, ErrNotBidding
	}
	if s.Leader == nil {
		return Outcome{}, ErrNoWinningBid
	}
	n := int64(len(s.Players))
	if n == 0 {
		return Outcome{}, ErrNoSubject
	}
	share := s.CurrentBid / n
	rem := s.CurrentBid - share*n

	out := Outcome{
		TeamID:   s.Leader.TeamID,
		TeamName: s.Leader.TeamName,
		Total:    s.CurrentBid,
		Sales:    make([]Sale, 0, n),
	}
	for i, p := range s.Players {
		price := share
		if i == 0 {
			price += rem
		}
		out.Sales = append(out.Sales, Sale{PlayerID: p.ID, Price: price})
	}
	return out, nil
}

// appendEntry copies before appending so undo-then-rebid never clobbers a
// history slice shared with an older State value.
func appendEntry(hist []BidEntry, e BidEntry) []BidEntry {
	out := make([]BidEntry, len(hist), len(hist)+1)
	copy(out, hist)
	return append(out, e)
}

func isCombo(players []Player) bool {
	return len(players) > 1 || (len(players) == 1 && players[0].ComboID != "")
}

func comboName(players []Player) string {
	for _, p := range players {
		if p.ComboName != "" {
			return p.ComboName
		}
	}
	return ""
}
