package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"chess21/internal/app"
	"chess21/internal/config"
	"chess21/internal/domain"
	"chess21/internal/ports"
	"chess21/internal/ports/chessengine"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Label is the queryable match label used for pairing.
type Label struct {
	Open    bool   `json:"open"`
	Game    string `json:"game"`
	Phase   string `json:"phase"`
	Private bool   `json:"private"`
}

// deferredEvent is a broadcast held back until its due tick. The match state
// it describes is already applied; only delivery waits.
type deferredEvent struct {
	due int64
	ev  app.Event
}

// MatchState holds the authoritative runtime state for one match. All access
// is serialized on the match loop, so no locking is needed; discarding the
// state (returning nil) cancels every scheduled step with it.
type MatchState struct {
	Match     *domain.Match
	Board     ports.Board
	Presences map[string]runtime.Presence
	App       *app.Service
	Results   ports.ResultsPort
	Cfg       config.GameConfig

	Private   bool
	FirstSide domain.Color // side handed to the first joiner

	started      bool
	houseDrawDue int64 // next scheduled house draw tick, 0 = idle
	deferred     []deferredEvent
	resultSaved  bool
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit creates the board and match state. Invite-created matches carry
// "private" and optionally "first_side" params fixing the creator's side.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := config.GetGameConfig()

	state := &MatchState{
		Match:     domain.NewMatch(cfg.InitialClockMs),
		Board:     chessengine.NewBoard(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		Results:   NewNakamaResultsAdapter(nk),
		Cfg:       cfg,
		FirstSide: domain.White,
	}
	if v, ok := params["private"].(bool); ok {
		state.Private = v
	}
	if v, ok := params["first_side"].(string); ok && v == "black" {
		state.FirstSide = domain.Black
	}

	labelBytes, err := json.Marshal(Label{Open: true, Game: "chess21", Phase: string(domain.PhaseNormal), Private: state.Private})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, cfg.ClockTickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	s, ok := state.(*MatchState)
	if !ok {
		return state, false, app.ErrMatchNotFound.Error()
	}
	if s.Match.Phase == domain.PhaseEnded {
		return s, false, app.ErrGameOver.Error()
	}
	if _, bound := s.Match.SideOf(presence.GetUserId()); !bound && s.Match.Started() {
		return s, false, app.ErrRoomFull.Error()
	}
	return s, true, ""
}

// MatchJoin binds joining presences to sides. The first joiner takes the
// match's first side (white unless the invite fixed it); the second takes the
// remaining side, which starts the match and the clock.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	for _, p := range presences {
		uid := p.GetUserId()
		side, assigned := s.Match.AddParticipant(uid, s.FirstSide)
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but both sides are bound.", uid)
			continue
		}
		s.Presences[uid] = p

		mh.dispatchEvents(ctx, s, dispatcher, logger, tick, []app.Event{
			{
				Kind:       app.EventMatchAssigned,
				Payload:    app.MatchAssignedPayload{MatchID: matchID, Side: side.Name()},
				Recipients: []string{uid},
			},
			{
				Kind:       app.EventClockUpdate,
				Payload:    app.ClockUpdatePayload{WhiteMs: s.Match.Clock.WhiteMs, BlackMs: s.Match.Clock.BlackMs, Active: s.Match.Clock.Active, Paused: s.Match.Clock.Paused},
				Recipients: []string{uid},
			},
		})
	}

	if !s.started && s.Match.Started() {
		s.started = true
		mh.dispatchEvents(ctx, s, dispatcher, logger, tick, s.App.StartMatch(s.Match, s.Board))
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLeave discards the match: the remaining participant is notified and
// the nil state cancels any scheduled house draws or deferred broadcasts.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	left := false
	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)
		if _, bound := s.Match.SideOf(uid); bound {
			s.Match.RemoveParticipant(uid)
			left = true
		}
	}
	if !left {
		return s
	}

	payload, _ := json.Marshal(app.OpponentLeftPayload{Message: "Opponent disconnected."})
	_ = dispatcher.BroadcastMessage(OpOpponentLeft, payload, nil, nil, true)

	logger.Info("MatchLeave: Participant left, discarding match.")
	return nil
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpSubmitMove:
			mh.handleSubmitMove(ctx, s, dispatcher, logger, tick, msg)
		case OpDrawCard:
			mh.handleDrawCard(ctx, s, dispatcher, logger, tick, msg)
		case OpStand:
			mh.handleStand(ctx, s, dispatcher, logger, tick, msg)
		case OpToggleClock:
			mh.handleToggleClock(ctx, s, dispatcher, logger, tick, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Paced house drawing after a stand.
	if s.houseDrawDue > 0 && tick >= s.houseDrawDue {
		events, done, err := s.App.HouseDrawStep(s.Match, s.Board)
		if err != nil {
			logger.Error("MatchLoop: House draw resolution failed: %v", err)
		}
		mh.dispatchEvents(ctx, s, dispatcher, logger, tick, events)
		if done {
			s.houseDrawDue = 0
			mh.updateLabel(s, dispatcher, logger)
		} else {
			s.houseDrawDue = tick + mh.delayTicks(s, s.Cfg.HouseDrawDelayMs)
		}
	}

	// Deliver resolution-window broadcasts that have come due.
	if len(s.deferred) > 0 {
		kept := s.deferred[:0]
		for _, d := range s.deferred {
			if tick >= d.due {
				mh.broadcastEvent(ctx, s, dispatcher, logger, d.ev)
				continue
			}
			kept = append(kept, d)
		}
		s.deferred = kept
	}

	// Clock tick for the active side. A forfeit ends the match, so anything
	// still queued for the resolution window goes out first to keep the
	// ended resolution last on the wire.
	clockEvents := s.App.TickClock(s.Match, s.Board, time.Now())
	if len(clockEvents) > 0 && s.Match.Phase == domain.PhaseEnded && len(s.deferred) > 0 {
		for _, d := range s.deferred {
			mh.broadcastEvent(ctx, s, dispatcher, logger, d.ev)
		}
		s.deferred = nil
	}
	mh.dispatchEvents(ctx, s, dispatcher, logger, tick, clockEvents)

	return s
}

func (mh *matchHandler) handleSubmitMove(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	var req domain.Move
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendRejected(s, dispatcher, logger, msg.GetUserId(), app.ErrInvalidMove.Error())
		return
	}

	events, err := s.App.SubmitMove(s.Match, s.Board, msg.GetUserId(), req)
	if err != nil {
		logger.Debug("handleSubmitMove: User %s rejected: %v", msg.GetUserId(), err)
		mh.sendRejected(s, dispatcher, logger, msg.GetUserId(), err.Error())
		return
	}
	mh.dispatchEvents(ctx, s, dispatcher, logger, tick, events)
	mh.updateLabel(s, dispatcher, logger)
}

func (mh *matchHandler) handleDrawCard(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	events, err := s.App.DrawCard(s.Match, s.Board, msg.GetUserId())
	if err != nil {
		// With no events the request itself was rejected; otherwise the duel
		// resolved and the error came from replaying the capture.
		if len(events) == 0 {
			mh.sendRejected(s, dispatcher, logger, msg.GetUserId(), err.Error())
			return
		}
		logger.Error("handleDrawCard: Resolution failed: %v", err)
	}
	mh.dispatchEvents(ctx, s, dispatcher, logger, tick, events)
	mh.updateLabel(s, dispatcher, logger)
}

func (mh *matchHandler) handleStand(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	if err := s.App.Stand(s.Match, msg.GetUserId()); err != nil {
		mh.sendRejected(s, dispatcher, logger, msg.GetUserId(), err.Error())
		return
	}
	if s.Match.Duel != nil && s.Match.Duel.HouseDrawing && s.houseDrawDue == 0 {
		s.houseDrawDue = tick + mh.delayTicks(s, s.Cfg.HouseDrawDelayMs)
	}
}

func (mh *matchHandler) handleToggleClock(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, msg runtime.MatchData) {
	events := s.App.ToggleClock(s.Match)
	mh.dispatchEvents(ctx, s, dispatcher, logger, tick, events)
}

// dispatchEvents broadcasts immediate events and queues deferred ones for the
// resolution-delay window, using the same tick scheduling as house draws.
func (mh *matchHandler) dispatchEvents(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, tick int64, events []app.Event) {
	for _, ev := range events {
		if ev.Deferred {
			s.deferred = append(s.deferred, deferredEvent{
				due: tick + mh.delayTicks(s, s.Cfg.ResolutionDelayMs),
				ev:  ev,
			})
			continue
		}
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) broadcastEvent(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := opCodeFor(ev.Kind)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	data, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, connected := s.Presences[uid]; connected {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	}

	_ = dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)

	if res, isResolution := ev.Payload.(app.ResolutionPayload); isResolution && res.Ended {
		mh.recordResult(ctx, s, logger, res)
	}
}

// recordResult writes the win/loss ledger once per decided match. Draws and
// stalemates carry no winner and are not recorded.
func (mh *matchHandler) recordResult(ctx context.Context, s *MatchState, logger runtime.Logger, res app.ResolutionPayload) {
	if s.resultSaved || res.WinnerID == "" || s.Results == nil {
		return
	}
	s.resultSaved = true

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	reason := "king_captured"
	if res.Note == "Time expired." {
		reason = "time_expired"
	}
	result := ports.MatchResult{
		MatchID:  matchID,
		WinnerID: res.WinnerID,
		LoserID:  res.LoserID,
		Reason:   reason,
	}
	if err := s.Results.RecordResult(ctx, result); err != nil {
		logger.Error("Failed to record match result: %v", err)
	}
}

func (mh *matchHandler) sendRejected(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, reason string) {
	data, err := json.Marshal(app.MoveRejectedPayload{Reason: reason})
	if err != nil {
		logger.Error("Failed to marshal rejection: %v", err)
		return
	}
	presence, ok := s.Presences[userID]
	if !ok {
		logger.Warn("Cannot send rejection to %s: presence not found", userID)
		return
	}
	_ = dispatcher.BroadcastMessage(OpMoveRejected, data, []runtime.Presence{presence}, nil, true)
}

// delayTicks converts a millisecond delay into match loop ticks, never less
// than one full tick.
func (mh *matchHandler) delayTicks(s *MatchState, ms int) int64 {
	rate := s.Cfg.ClockTickRate
	if rate <= 0 {
		rate = 1
	}
	ticks := int64((ms*rate + 999) / 1000)
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := Label{
		Open:    !s.Match.Started() && s.Match.Phase != domain.PhaseEnded,
		Game:    "chess21",
		Phase:   string(s.Match.Phase),
		Private: s.Private,
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func opCodeFor(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventMatchAssigned:
		return OpMatchAssigned, true
	case app.EventMatchReady:
		return OpMatchReady, true
	case app.EventMoveApplied:
		return OpMoveApplied, true
	case app.EventMoveRejected:
		return OpMoveRejected, true
	case app.EventDuelStarted:
		return OpDuelStarted, true
	case app.EventDuelUpdate:
		return OpDuelUpdate, true
	case app.EventResolution:
		return OpResolution, true
	case app.EventClockUpdate:
		return OpClockUpdate, true
	case app.EventOpponentLeft:
		return OpOpponentLeft, true
	}
	return 0, false
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
