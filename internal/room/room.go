package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arjunkv/auction-backend/internal/clock"
	"github.com/arjunkv/auction-backend/internal/engine"
	"github.com/arjunkv/auction-backend/internal/store"
	"github.com/arjunkv/auction-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join registers a viewer connection. The room immediately pushes the
// current snapshot to the outbox, so a reconnecting viewer is in sync
// without asking.
type Join struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Leave struct{ ClientID string }

// FromClient is one inbound command. Rejections are answered only to the
// issuing client; accepted mutations are broadcast to everyone.
type FromClient struct {
	ClientID string
	Msg      types.ClientMessage
}

// GetView reflects internal state without data races; test-only.
type GetView struct {
	Reply chan View
}

type Shutdown struct{}

// resetFired is the delayed sold/unsold -> idle transition. gen guards
// against a stale timer clobbering a lot started in the meantime.
type resetFired struct{ gen int }

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (GetView) isRoomMsg()    {}
func (Shutdown) isRoomMsg()   {}
func (resetFired) isRoomMsg() {}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// Deps are the room's collaborators.
type Deps struct {
	Ledger     store.TeamLedger
	Registry   store.PlayerRegistry
	Configs    store.ConfigStore
	Logger     *zap.Logger
	Clock      clock.Clock
	ResetDelay time.Duration
}

// Room owns the single process-wide lot. All mutation happens on the loop
// goroutine: each command is handled to completion, broadcast included,
// before the next is read, so state transitions never interleave.
type Room struct {
	inbox    chan Msg
	state    engine.State
	version  int
	resetGen int
	clients  map[string]chan types.ServerMessage

	ledger     store.TeamLedger
	registry   store.PlayerRegistry
	configs    store.ConfigStore
	log        *zap.Logger
	clk        clock.Clock
	resetDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRoom(parent context.Context, deps Deps) *Room {
	ctx, cancel := context.WithCancel(parent)

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.ResetDelay <= 0 {
		deps.ResetDelay = 2 * time.Second
	}

	r := &Room{
		inbox:      make(chan Msg, 64),
		state:      engine.NewIdleState(),
		clients:    make(map[string]chan types.ServerMessage),
		ledger:     deps.Ledger,
		registry:   deps.Registry,
		configs:    deps.Configs,
		log:        deps.Logger,
		clk:        deps.Clock,
		resetDelay: deps.ResetDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
	go r.loop()
	return r
}

// Inbox exposes the message channel to the WS layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.sendTo(msg.ClientID, r.snapshot())

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case FromClient:
				r.handleCommand(msg.ClientID, msg.Msg)

			case GetView:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state,
				}

			case resetFired:
				if msg.gen != r.resetGen {
					break
				}
				if r.state.Status != engine.StatusSold && r.state.Status != engine.StatusUnsold {
					break
				}
				r.apply("", engine.Command{Type: engine.CmdReset})

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) handleCommand(clientID string, cm types.ClientMessage) {
	switch cm.Type {
	case "request_auction_state":
		r.sendTo(clientID, r.snapshot())
	case "start_auction":
		r.startLot(clientID, cm.PlayerID)
	case "place_bid":
		r.placeBid(clientID, cm)
	case "undo_bid":
		r.apply(clientID, engine.Command{Type: engine.CmdUndoBid})
	case "end_auction":
		r.finalize(clientID)
	case "trigger_lucky_dip":
		r.luckyDip(clientID, cm.PlayerID)
	case "update_status":
		r.updateStatus(clientID, cm.Status)
	default:
		r.sendError(clientID, "unknown command type", "")
	}
}

// apply runs one engine transition and broadcasts on success. Returns
// whether the command was accepted.
func (r *Room) apply(clientID string, cmd engine.Command) bool {
	events, next, err := engine.Apply(r.state, cmd)
	if err != nil {
		r.log.Debug("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		r.sendError(clientID, err.Error(), cmd.Team.Name)
		return false
	}
	r.state = next
	r.version++
	for _, ev := range events {
		r.log.Info("auction event",
			zap.String("event", string(ev.Type)),
			zap.String("team", ev.TeamName),
			zap.Int64("amount", ev.Amount),
			zap.Int("version", r.version))
	}
	r.broadcast(r.snapshot())
	for _, ev := range events {
		if ev.Type == engine.EvtBidPlaced {
			// Per-bid toast for the viewer screens, alongside the full
			// snapshot.
			r.broadcast(types.ServerMessage{
				Type:     "new_bid",
				TeamName: ev.TeamName,
				Amount:   ev.Amount,
			})
		}
	}
	return true
}

func (r *Room) startLot(clientID string, playerID int64) {
	players, cfg, ok := r.resolveSubject(clientID, playerID)
	if !ok {
		return
	}
	r.apply(clientID, engine.Command{
		Type:    engine.CmdStartLot,
		Players: players,
		Config:  cfg,
		At:      r.clk.Now(),
	})
}

func (r *Room) placeBid(clientID string, cm types.ClientMessage) {
	// Check the state before touching the ledger so an idle-console bid
	// does not cost a query.
	if r.state.Status != engine.StatusBidding {
		r.sendError(clientID, engine.ErrNotBidding.Error(), cm.TeamName)
		return
	}

	tv, err := r.ledger.GetTeam(r.ctx, cm.TeamID)
	if err != nil {
		r.log.Error("ledger read failed", zap.Int64("team_id", cm.TeamID), zap.Error(err))
		r.sendError(clientID, "team lookup failed", cm.TeamName)
		return
	}

	roster := tv.PlayersOwned
	if tv.CaptainFilled {
		roster++
	}
	if r.state.Config.HasSponsor && tv.SponsorFilled {
		roster++
	}

	r.apply(clientID, engine.Command{
		Type:   engine.CmdPlaceBid,
		Amount: cm.Amount,
		At:     r.clk.Now(),
		Team: engine.TeamSnapshot{
			ID:            tv.ID,
			Name:          tv.Name,
			Budget:        tv.Budget,
			RosterCount:   roster,
			CaptainFilled: tv.CaptainFilled,
		},
	})
}

func (r *Room) finalize(clientID string) {
	if r.state.Status != engine.StatusBidding {
		r.sendError(clientID, engine.ErrNotBidding.Error(), "")
		return
	}

	if r.state.Leader != nil {
		out, err := engine.SaleOutcome(r.state)
		if err != nil {
			r.sendError(clientID, err.Error(), "")
			return
		}
		// Budgets may have been edited since the bid was accepted; the
		// conditional debit inside FinalizeSale is the authoritative check.
		// On any failure the lot stays in bidding for an operator retry.
		if err := r.ledger.FinalizeSale(r.ctx, out.TeamID, out.Total, out.Sales); err != nil {
			if errors.Is(err, store.ErrInsufficientBudget) {
				r.log.Warn("finalize rejected: insufficient funds",
					zap.String("team", out.TeamName),
					zap.Int64("amount", out.Total))
				r.sendError(clientID, "insufficient funds", out.TeamName)
				return
			}
			r.log.Error("ledger write failed", zap.Error(err))
			r.sendError(clientID, "ledger write failed", out.TeamName)
			return
		}
		ended := &types.AuctionEnded{
			Success: true,
			Players: r.state.Players,
			SoldTo:  r.state.Leader,
			Price:   r.state.CurrentBid,
			IsCombo: r.state.IsCombo,
		}
		if r.apply(clientID, engine.Command{Type: engine.CmdMarkSold}) {
			r.broadcast(types.ServerMessage{Type: "auction_ended", Ended: ended})
			r.armReset()
		}
		return
	}

	ids := make([]int64, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		ids = append(ids, p.ID)
	}
	if err := r.registry.MarkUnsold(r.ctx, ids); err != nil {
		r.log.Error("registry write failed", zap.Error(err))
		r.sendError(clientID, "registry write failed", "")
		return
	}
	ended := &types.AuctionEnded{
		Success: false,
		Players: r.state.Players,
		IsCombo: r.state.IsCombo,
	}
	if r.apply(clientID, engine.Command{Type: engine.CmdMarkUnsold}) {
		r.broadcast(types.ServerMessage{Type: "auction_ended", Ended: ended})
		r.armReset()
	}
}

func (r *Room) luckyDip(clientID string, playerID int64) {
	p, err := r.registry.GetPlayer(r.ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendError(clientID, "player not found", "")
		} else {
			r.log.Error("registry read failed", zap.Int64("player_id", playerID), zap.Error(err))
			r.sendError(clientID, "player lookup failed", "")
		}
		return
	}
	// The candidate list on the console may be stale; re-check against the
	// registry before revealing.
	if p.Status != "unsold" || p.TeamID != nil {
		r.sendError(clientID, "player is no longer available, refresh the player list", "")
		return
	}

	players, cfg, ok := r.resolveSubject(clientID, playerID)
	if !ok {
		return
	}
	r.apply(clientID, engine.Command{
		Type:    engine.CmdLuckyDip,
		Players: players,
		Config:  cfg,
	})
}

func (r *Room) updateStatus(clientID string, raw string) {
	status := engine.Status(raw)
	if !engine.ValidStatus(status) {
		r.sendError(clientID, "unknown status", "")
		return
	}
	if status == engine.StatusIdle {
		r.apply(clientID, engine.Command{Type: engine.CmdReset})
		return
	}
	r.apply(clientID, engine.Command{Type: engine.CmdForceStatus, Status: status})
}

// resolveSubject loads the target player, expands combo membership and
// fetches the auction config. Reports errors to the caller itself.
func (r *Room) resolveSubject(clientID string, playerID int64) ([]engine.Player, engine.Config, bool) {
	cfg, err := r.configs.Get(r.ctx)
	if err != nil {
		r.log.Error("config read failed", zap.Error(err))
		r.sendError(clientID, "loading auction config failed", "")
		return nil, engine.Config{}, false
	}

	p, err := r.registry.GetPlayer(r.ctx, playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.sendError(clientID, "player not found", "")
		} else {
			r.log.Error("registry read failed", zap.Int64("player_id", playerID), zap.Error(err))
			r.sendError(clientID, "player lookup failed", "")
		}
		return nil, engine.Config{}, false
	}

	members := []store.Player{p}
	if p.ComboID != nil && *p.ComboID != "" {
		combo, err := r.registry.GetComboMembers(r.ctx, *p.ComboID)
		if err != nil {
			r.log.Error("combo lookup failed", zap.String("combo_id", *p.ComboID), zap.Error(err))
			r.sendError(clientID, "combo lookup failed", "")
			return nil, engine.Config{}, false
		}
		if len(combo) > 0 {
			members = combo
		}
	}

	players := make([]engine.Player, 0, len(members))
	for _, m := range members {
		players = append(players, m.Lot())
	}
	return players, cfg, true
}

// armReset schedules the sold/unsold -> idle transition and invalidates
// any previously armed timer.
func (r *Room) armReset() {
	r.resetGen++
	gen := r.resetGen
	time.AfterFunc(r.resetDelay, func() {
		select {
		case r.inbox <- resetFired{gen: gen}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) snapshot() types.ServerMessage {
	st := r.state
	return types.ServerMessage{
		Type:       "auction_update",
		Version:    r.version,
		State:      &st,
		NextMinBid: engine.NextMinimumBid(r.state),
	}
}

func (r *Room) sendError(clientID, message, teamName string) {
	r.sendTo(clientID, types.ServerMessage{
		Type:     "error",
		Error:    message,
		TeamName: teamName,
	})
}

func (r *Room) sendTo(clientID string, msg types.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Client is slow/full - drop them.
		close(ch)
		delete(r.clients, clientID)
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- msg:
		default:
			close(ch)
			delete(r.clients, id)
		}
	}
}
