// Package tictactoe implements the two-seat best-of-N rule module. The
// creator is the host: only the host may trigger a rematch or close the
// room, and when the host leaves the seat passes to the other player.
package tictactoe

import (
	"encoding/json"

	"github.com/samber/lo"

	"gamehub/ws"
)

type Game struct{}

func New() *Game { return &Game{} }

func (*Game) Name() string { return "ttt" }

func (*Game) Policy() ws.Policy {
	return ws.Policy{MaxPlayers: 2, ExclusiveCreate: true}
}

func (*Game) NewRoom(meta ws.Meta, join ws.Event) ws.RoomState {
	var opts struct {
		Rounds int `json:"rounds"`
	}
	_ = json.Unmarshal(join.Raw, &opts)
	rounds := opts.Rounds
	switch rounds {
	case 1, 3, 5, 10:
	default:
		rounds = 1
	}
	return &state{
		meta:      meta,
		maxRounds: rounds,
		players:   make(map[string]*player),
		scores:    make(map[string]int),
		turn:      "X",
	}
}

type player struct {
	Name string `json:"name"`
	Mark string `json:"mark"`
}

type state struct {
	meta      ws.Meta
	players   map[string]*player
	scores    map[string]int // by mark
	host      string
	board     [9]string
	turn      string
	round     int
	maxRounds int
	over      bool // current board finished, waiting for next round
}

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (s *state) Join(pid, name string, _ ws.Event) ([]ws.Effect, error) {
	// take the free mark: a seat refilled after a mid-match departure
	// must not duplicate the remaining player's
	mark := "X"
	for _, p := range s.players {
		if p.Mark == "X" {
			mark = "O"
		}
	}
	if s.host == "" {
		s.host = pid
	}
	s.players[pid] = &player{Name: name, Mark: mark}

	effects := []ws.Effect{
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type":   ws.EventJoined,
			"pid":    pid,
			"room":   s.meta.RoomID,
			"mark":   mark,
			"isHost": pid == s.host,
		}},
		ws.Broadcast{Payload: map[string]any{
			"type":    ws.EventSystem,
			"msg":     name + " joined as " + mark,
			"players": s.players,
		}},
	}
	if len(s.players) == 2 {
		// a refill resumes the match in progress
		if s.round == 0 {
			s.round = 1
		}
		effects = append(effects, s.pushState())
	}
	return effects, nil
}

func (s *state) Handle(pid string, evt ws.Event) []ws.Effect {
	switch evt.Type {
	case "move":
		return s.handleMove(pid, evt)
	case "rematch":
		if pid != s.host {
			return []ws.Effect{ws.Unicast{PID: pid, Payload: ws.Info("Only the host can start a rematch.")}}
		}
		return s.rematch()
	case "host_exit":
		if pid != s.host {
			return []ws.Effect{ws.Unicast{PID: pid, Payload: ws.Info("Only the host can close the room.")}}
		}
		return []ws.Effect{
			ws.Broadcast{Payload: map[string]any{"type": "host_left"}},
			ws.DestroyRoom{CloseConns: true},
		}
	}
	return nil
}

func (s *state) handleMove(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || s.over || len(s.players) < 2 || pl.Mark != s.turn {
		return nil
	}
	var req struct {
		Index *int `json:"idx"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil || req.Index == nil {
		return nil
	}
	idx := *req.Index
	if idx < 0 || idx > 8 || s.board[idx] != "" {
		return nil
	}

	s.board[idx] = pl.Mark
	if winner := s.winner(); winner != "" || s.full() {
		if winner != "" {
			s.scores[winner]++
		}
		s.over = true
		matchOver := s.round >= s.maxRounds

		scores := map[string]int{"X": s.scores["X"], "O": s.scores["O"]}
		result := map[string]any{
			"type":      "result",
			"board":     s.boardView(),
			"winner":    winner, // empty on a draw
			"draw":      winner == "",
			"round":     s.round,
			"scores":    scores,
			"matchOver": matchOver,
		}
		effects := []ws.Effect{ws.Broadcast{Payload: result}}
		if !matchOver {
			s.nextRound()
			effects = append(effects, s.pushState())
		}
		return effects
	}

	s.turn = otherMark(s.turn)
	return []ws.Effect{s.pushState()}
}

func (s *state) rematch() []ws.Effect {
	s.scores = make(map[string]int)
	s.round = 1
	s.board = [9]string{}
	s.turn = "X"
	s.over = false
	return []ws.Effect{
		ws.Broadcast{Payload: map[string]any{"type": "rematch"}},
		s.pushState(),
	}
}

func (s *state) nextRound() {
	s.round++
	s.board = [9]string{}
	s.over = false
	// loser of the alternation starts: X begins odd rounds, O even
	if s.round%2 == 1 {
		s.turn = "X"
	} else {
		s.turn = "O"
	}
}

func (s *state) Leave(pid string) []ws.Effect {
	info := s.players[pid]
	delete(s.players, pid)

	name := "?"
	if info != nil {
		name = info.Name
	}
	effects := []ws.Effect{
		ws.Broadcast{Payload: map[string]any{
			"type":    ws.EventSystem,
			"msg":     name + " left",
			"players": s.players,
		}},
	}

	if s.host == pid && len(s.players) > 0 {
		s.host = lo.Keys(s.players)[0]
		effects = append(effects, ws.Broadcast{Payload: map[string]any{
			"type": "new_host", "pid": s.host,
		}})
	}
	effects = append(effects, s.pushState())
	return effects
}

func (s *state) Tick(int) []ws.Effect { return nil }
func (s *state) Timeout() []ws.Effect { return nil }

func (s *state) Summary() map[string]any {
	return map[string]any{
		"round":     s.round,
		"maxRounds": s.maxRounds,
	}
}

func (s *state) winner() string {
	for _, line := range winLines {
		a, b, c := s.board[line[0]], s.board[line[1]], s.board[line[2]]
		if a != "" && a == b && b == c {
			return a
		}
	}
	return ""
}

func (s *state) full() bool {
	for _, cell := range s.board {
		if cell == "" {
			return false
		}
	}
	return true
}

// boardView renders empty cells as JSON null, matching the client's
// expectation of a 9-slot array.
func (s *state) boardView() []any {
	out := make([]any, 9)
	for i, cell := range s.board {
		if cell != "" {
			out[i] = cell
		}
	}
	return out
}

func (s *state) hostMark() string {
	if pl, ok := s.players[s.host]; ok {
		return pl.Mark
	}
	return ""
}

func (s *state) pushState() ws.Effect {
	return ws.Broadcast{Payload: map[string]any{
		"type":      "state",
		"board":     s.boardView(),
		"turn":      s.turn,
		"round":     s.round,
		"maxRounds": s.maxRounds,
		"scores":    map[string]int{"X": s.scores["X"], "O": s.scores["O"]},
		"hostMark":  s.hostMark(),
	}}
}

func otherMark(m string) string {
	if m == "X" {
		return "O"
	}
	return "X"
}
