// Package codenames implements the team word-guessing rule module. Two
// teams race to reveal their cards from clues given by their spymaster;
// card colors are asymmetric information, visible in full only to
// spymasters until revealed.
package codenames

import (
	"encoding/json"
	"math/rand"
	"strings"

	"gamehub/ws"
)

const (
	boardSize   = 25
	maxClueLen  = 20
	teamRed     = "red"
	teamBlue    = "blue"
	roleSpy     = "spymaster"
	roleOp      = "operative"
	colorNeut   = "neutral"
	colorKiller = "assassin"
)

type Game struct{}

func New() *Game { return &Game{} }

func (*Game) Name() string { return "codenames" }

func (*Game) Policy() ws.Policy { return ws.Policy{} }

func (*Game) NewRoom(meta ws.Meta, _ ws.Event) ws.RoomState {
	return &state{
		meta:    meta,
		players: make(map[string]*player),
	}
}

type player struct {
	Name string
	Team string // "" until picked
	Role string
}

type card struct {
	Word     string
	Color    string
	Revealed bool
}

type state struct {
	meta        ws.Meta
	players     map[string]*player
	playing     bool
	cards       []card
	turn        string
	clueWord    string
	clueCount   int
	guessesLeft int
}

func (s *state) Join(pid, name string, _ ws.Event) ([]ws.Effect, error) {
	if s.playing {
		return nil, ws.ErrGameInProgress
	}
	s.players[pid] = &player{Name: name}
	return []ws.Effect{
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type": ws.EventJoined,
			"pid":  pid,
			"room": s.meta.RoomID,
		}},
		ws.Broadcast{Payload: map[string]any{
			"type": ws.EventSystem,
			"msg":  name + " joined",
		}},
		s.pushLobby(),
	}, nil
}

func (s *state) Handle(pid string, evt ws.Event) []ws.Effect {
	switch evt.Type {
	case "set_team_role":
		return s.handleSetTeamRole(pid, evt)
	case "start_game":
		return s.handleStart(pid)
	case "clue":
		return s.handleClue(pid, evt)
	case "guess":
		return s.handleGuess(pid, evt)
	case "end_turn":
		return s.handleEndTurn(pid)
	}
	return nil
}

func (s *state) handleSetTeamRole(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || s.playing {
		return nil
	}
	var req struct {
		Team string `json:"team"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil {
		return nil
	}
	if req.Team != teamRed && req.Team != teamBlue {
		return nil
	}
	if req.Role != roleSpy && req.Role != roleOp {
		return nil
	}
	if req.Role == roleSpy {
		if other := s.spymasterOf(req.Team); other != "" && other != pid {
			return []ws.Effect{ws.Unicast{PID: pid,
				Payload: ws.Info("That team already has a spymaster.")}}
		}
	}

	pl.Team = req.Team
	pl.Role = req.Role
	return []ws.Effect{
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type": "you", "team": pl.Team, "role": pl.Role,
		}},
		s.pushLobby(),
	}
}

func (s *state) handleStart(pid string) []ws.Effect {
	if s.playing {
		return nil
	}
	if _, ok := s.players[pid]; !ok {
		return nil
	}
	if s.spymasterOf(teamRed) == "" || s.spymasterOf(teamBlue) == "" {
		return []ws.Effect{ws.Unicast{PID: pid,
			Payload: ws.Info("Both teams need a spymaster before starting.")}}
	}
	if !s.hasOperative() {
		return []ws.Effect{ws.Unicast{PID: pid,
			Payload: ws.Info("At least one operative is needed before starting.")}}
	}

	first := teamRed
	if rand.Intn(2) == 1 {
		first = teamBlue
	}
	s.cards = dealBoard(first)
	s.turn = first
	s.playing = true
	s.clueWord = ""
	s.clueCount = 0
	s.guessesLeft = 0

	return []ws.Effect{
		ws.Broadcast{Payload: map[string]any{"type": "game_start", "first": first}},
		s.pushPlay(),
	}
}

func (s *state) handleClue(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || !s.playing || pl.Team != s.turn || pl.Role != roleSpy {
		return nil
	}
	if s.clueWord != "" {
		return nil
	}
	var req struct {
		Word  string `json:"word"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil {
		return nil
	}
	word := strings.ToUpper(strings.TrimSpace(req.Word))
	if word == "" {
		return nil
	}
	if runes := []rune(word); len(runes) > maxClueLen {
		word = string(runes[:maxClueLen])
	}

	s.clueWord = word
	s.clueCount = req.Count
	if s.clueCount < 0 {
		s.clueCount = 0
	}
	s.guessesLeft = s.clueCount + 1
	return []ws.Effect{s.pushPlay()}
}

func (s *state) handleGuess(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || !s.playing || pl.Team != s.turn || pl.Role != roleOp {
		return nil
	}
	if s.clueWord == "" || s.guessesLeft <= 0 {
		return nil
	}
	var req struct {
		Index *int `json:"idx"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil || req.Index == nil {
		return nil
	}
	idx := *req.Index
	if idx < 0 || idx >= len(s.cards) || s.cards[idx].Revealed {
		return nil
	}

	c := &s.cards[idx]
	c.Revealed = true

	if c.Color == colorKiller {
		s.playing = false
		return []ws.Effect{
			s.pushPlay(),
			ws.Broadcast{Payload: map[string]any{
				"type": "result", "winner": otherTeam(pl.Team), "reason": "assassin",
			}},
			ws.DestroyRoom{},
		}
	}

	if winner := s.winnerByCards(); winner != "" {
		s.playing = false
		return []ws.Effect{
			s.pushPlay(),
			ws.Broadcast{Payload: map[string]any{
				"type": "result", "winner": winner, "reason": "all_found",
			}},
			ws.DestroyRoom{},
		}
	}

	if c.Color == pl.Team {
		s.guessesLeft--
	} else {
		s.guessesLeft = 0
	}
	if s.guessesLeft == 0 {
		s.passTurn()
	}
	return []ws.Effect{s.pushPlay()}
}

func (s *state) handleEndTurn(pid string) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || !s.playing || pl.Team != s.turn || pl.Role != roleOp {
		return nil
	}
	s.passTurn()
	return []ws.Effect{s.pushPlay()}
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
			"type": ws.EventSystem,
			"msg":  name + " left",
		}},
	}

	if s.playing && info != nil && info.Role == roleSpy {
		effects = append(effects,
			ws.Broadcast{Payload: ws.Info("A spymaster left, the game cannot continue.")},
		)
		s.playing = false
	}
	if s.playing {
		effects = append(effects, s.pushPlay())
	} else {
		effects = append(effects, s.pushLobby())
	}
	return effects
}

func (s *state) Tick(int) []ws.Effect { return nil }
func (s *state) Timeout() []ws.Effect { return nil }

func (s *state) Summary() map[string]any {
	if !s.playing {
		spies := 0
		if s.spymasterOf(teamRed) != "" {
			spies++
		}
		if s.spymasterOf(teamBlue) != "" {
			spies++
		}
		return map[string]any{"phase": "lobby", "spies": spies}
	}
	return map[string]any{"phase": "play", "turn": s.turn}
}

func (s *state) spymasterOf(team string) string {
	for pid, pl := range s.players {
		if pl.Team == team && pl.Role == roleSpy {
			return pid
		}
	}
	return ""
}

func (s *state) hasOperative() bool {
	for _, pl := range s.players {
		if pl.Role == roleOp {
			return true
		}
	}
	return false
}

func (s *state) passTurn() {
	s.turn = otherTeam(s.turn)
	s.clueWord = ""
	s.clueCount = 0
	s.guessesLeft = 0
}

// winnerByCards reports the team whose cards are all revealed.
func (s *state) winnerByCards() string {
	left := map[string]int{teamRed: 0, teamBlue: 0}
	for _, c := range s.cards {
		if !c.Revealed && (c.Color == teamRed || c.Color == teamBlue) {
			left[c.Color]++
		}
	}
	if left[teamRed] == 0 {
		return teamRed
	}
	if left[teamBlue] == 0 {
		return teamBlue
	}
	return ""
}

func (s *state) pushLobby() ws.Effect {
	roster := make([]map[string]any, 0, len(s.players))
	for pid, pl := range s.players {
		row := map[string]any{"pid": pid, "name": pl.Name}
		if pl.Team != "" {
			row["team"] = pl.Team
			row["role"] = pl.Role
		}
		roster = append(roster, row)
	}
	return ws.Broadcast{Payload: map[string]any{
		"type":    "lobby_state",
		"players": roster,
	}}
}

// pushPlay sends every player their view of the board. Spymasters see
// every color; operatives only the colors of revealed cards.
func (s *state) pushPlay() ws.Effect {
	return ws.BroadcastEach{View: func(pid string) (any, bool) {
		pl, ok := s.players[pid]
		if !ok {
			return nil, false
		}
		spy := pl.Role == roleSpy
		board := make([]map[string]any, len(s.cards))
		for i, c := range s.cards {
			row := map[string]any{"word": c.Word, "revealed": c.Revealed}
			if spy || c.Revealed {
				row["color"] = c.Color
			}
			board[i] = row
		}
		return map[string]any{
			"type":        "play_state",
			"board":       board,
			"turn":        s.turn,
			"clueWord":    s.clueWord,
			"clueCount":   s.clueCount,
			"guessesLeft": s.guessesLeft,
			"you":         map[string]any{"team": pl.Team, "role": pl.Role},
		}, true
	}}
}

// dealBoard draws 25 words and colors them: 9 for the starting team,
// 8 for the other, 7 neutral and one assassin.
func dealBoard(first string) []card {
	chosen := sampleWords(boardSize)
	colors := make([]string, 0, boardSize)
	for i := 0; i < 9; i++ {
		colors = append(colors, first)
	}
	second := otherTeam(first)
	for i := 0; i < 8; i++ {
		colors = append(colors, second)
	}
	for i := 0; i < 7; i++ {
		colors = append(colors, colorNeut)
	}
	colors = append(colors, colorKiller)
	rand.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})

	cards := make([]card, boardSize)
	for i := range cards {
		cards[i] = card{Word: chosen[i], Color: colors[i]}
	}
	return cards
}

func otherTeam(t string) string {
	if t == teamRed {
		return teamBlue
	}
	return teamRed
}
