// Package pictionary implements the drawing-and-guessing rule module:
// a rotating drawer picks one of three words under a choice countdown,
// draws it under a round countdown, and the other players guess through
// chat. The drawer sees the word; guessers see a masked form.
package pictionary

import (
	"encoding/json"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"gamehub/ws"
)

const (
	RoundSeconds  = 75
	ChoiceSeconds = 10
	Intermission  = 5 * time.Second

	maxChatLen = 200
)

type Game struct{}

func New() *Game { return &Game{} }

func (*Game) Name() string { return "pictionary" }

func (*Game) Policy() ws.Policy {
	return ws.Policy{UniqueNames: true, Passwords: true}
}

func (*Game) NewRoom(meta ws.Meta, _ ws.Event) ws.RoomState {
	return &state{
		meta:    meta,
		players: make(map[string]*player),
	}
}

type player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type stroke struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	W  float64 `json:"w"`
	C  string  `json:"c"`
}

type phase int

const (
	phaseIdle         phase = iota // fewer than two players, nothing running
	phaseChoosing                  // drawer picking a word
	phaseDrawing                   // round countdown running
	phaseIntermission              // pause before the next round
)

type state struct {
	meta        ws.Meta
	players     map[string]*player
	drawerOrder []string
	drawerIdx   int
	drawer      string
	word        string
	choices     []string
	chosen      bool
	strokes     []stroke
	phase       phase
	secondsLeft int
}

func (s *state) Join(pid, name string, _ ws.Event) ([]ws.Effect, error) {
	s.players[pid] = &player{Name: name}
	if !lo.Contains(s.drawerOrder, pid) {
		s.drawerOrder = append(s.drawerOrder, pid)
	}

	effects := []ws.Effect{
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type":        ws.EventJoined,
			"pid":         pid,
			"room":        s.meta.RoomID,
			"hasPassword": s.meta.HasPassword,
			"inviteKey":   s.meta.InviteKey,
		}},
		ws.Broadcast{Payload: map[string]any{
			"type":    ws.EventSystem,
			"msg":     name + " joined",
			"players": s.players,
		}},
	}

	if s.phase == phaseIdle && len(s.players) >= 2 {
		effects = append(effects, s.startRound()...)
	} else {
		effects = append(effects, s.pushState())
	}
	return effects, nil
}

func (s *state) Handle(pid string, evt ws.Event) []ws.Effect {
	switch evt.Type {
	case "choose_word":
		return s.handleChoose(pid, evt)
	case "stroke":
		return s.handleStroke(pid, evt)
	case "clear":
		if pid != s.drawer || !s.chosen {
			return nil
		}
		s.strokes = s.strokes[:0]
		return []ws.Effect{ws.Broadcast{Payload: map[string]any{"type": "clear"}}}
	case "chat":
		return s.handleChat(pid, evt)
	}
	return nil
}

func (s *state) handleChoose(pid string, evt ws.Event) []ws.Effect {
	if s.phase != phaseChoosing || pid != s.drawer {
		return nil
	}
	var req struct {
		Choice string `json:"choice"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil {
		return nil
	}
	choice := strings.TrimSpace(req.Choice)
	if !lo.Contains(s.choices, choice) {
		return nil
	}

	s.word = choice
	s.chosen = true
	return s.beginDrawing(ws.Broadcast{Payload: ws.Info("Word picked!")})
}

func (s *state) handleStroke(pid string, evt ws.Event) []ws.Effect {
	if pid != s.drawer || !s.chosen {
		return nil
	}
	st := stroke{W: 2, C: "#000"}
	if err := json.Unmarshal(evt.Raw, &st); err != nil {
		return nil
	}
	s.strokes = append(s.strokes, st)
	return []ws.Effect{ws.Broadcast{Payload: map[string]any{"type": "stroke", "stroke": st}}}
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(s), "")
}

func (s *state) handleChat(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok {
		return nil
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil {
		return nil
	}
	text := req.Text
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}

	// a non-drawer matching the word ends the round; drawer chat with
	// the word would leak it, but the original allows it and so do we
	if s.chosen && s.word != "" && strings.TrimSpace(text) != "" && pid != s.drawer &&
		normalize(text) == normalize(s.word) {
		pl.Score += 10
		if d, ok := s.players[s.drawer]; ok {
			d.Score += 5
		}
		s.phase = phaseIntermission
		return []ws.Effect{
			ws.Broadcast{Payload: map[string]any{
				"type": "guess", "pid": pid, "name": pl.Name, "correct": true,
			}},
			ws.Broadcast{Payload: map[string]any{
				"type": "round_end", "result": "guessed", "winner": pid, "word": s.word,
			}},
			ws.StartTimer{After: Intermission},
		}
	}

	return []ws.Effect{ws.Broadcast{Payload: map[string]any{
		"type": "chat", "pid": pid, "name": pl.Name, "text": text,
	}}}
}

func (s *state) Leave(pid string) []ws.Effect {
	info := s.players[pid]
	delete(s.players, pid)
	s.drawerOrder = lo.Without(s.drawerOrder, pid)
	if len(s.drawerOrder) > 0 {
		s.drawerIdx %= len(s.drawerOrder)
	} else {
		s.drawerIdx = 0
	}

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

	if s.drawer == pid {
		effects = append(effects,
			ws.CancelTimer{},
			ws.Broadcast{Payload: ws.Info("The drawer left, restarting the round.")})
		effects = append(effects, s.startRound()...)
	}
	return effects
}

// Tick drives both countdowns. The zero tick is the fallback: the word
// is auto-picked, or the round ends in a timeup, exactly once.
func (s *state) Tick(remaining int) []ws.Effect {
	switch s.phase {
	case phaseChoosing:
		if remaining > 0 {
			return nil
		}
		if !s.chosen && len(s.choices) > 0 {
			s.word = s.choices[rand.Intn(len(s.choices))]
			s.chosen = true
		}
		return s.beginDrawing(ws.Broadcast{Payload: ws.Info("Word picked automatically.")})

	case phaseDrawing:
		s.secondsLeft = remaining
		if remaining == 0 {
			s.phase = phaseIntermission
			return []ws.Effect{
				ws.Broadcast{Payload: map[string]any{
					"type": "round_end", "result": "timeup", "word": s.word,
				}},
				ws.StartTimer{After: Intermission},
			}
		}
		// sparse updates: every 5s, then every second near expiry
		if remaining%5 == 0 || remaining <= 5 {
			return []ws.Effect{s.pushState()}
		}
		return nil
	}
	return nil
}

func (s *state) Timeout() []ws.Effect {
	if s.phase != phaseIntermission {
		return nil
	}
	return s.startRound()
}

// startRound rotates the drawer and opens the word choice, or resets to
// idle when fewer than two players remain.
func (s *state) startRound() []ws.Effect {
	if len(s.players) < 2 {
		s.phase = phaseIdle
		s.drawer = ""
		s.word = ""
		s.choices = nil
		s.chosen = false
		s.strokes = s.strokes[:0]
		s.secondsLeft = 0
		return []ws.Effect{
			ws.Broadcast{Payload: ws.Info("At least 2 players are needed for a new round.")},
			s.pushState(),
		}
	}

	s.drawer = s.nextDrawer()
	s.strokes = s.strokes[:0]
	s.secondsLeft = 0
	s.chosen = false
	s.word = ""
	s.choices = sampleWords(3)
	s.phase = phaseChoosing

	return []ws.Effect{
		ws.Broadcast{Payload: map[string]any{"type": "round_start", "drawer": s.drawer}},
		s.pushState(),
		ws.Unicast{PID: s.drawer, Payload: map[string]any{
			"type": "choose_word", "choices": s.choices, "timeout": ChoiceSeconds,
		}},
		ws.StartCountdown{Seconds: ChoiceSeconds},
	}
}

func (s *state) beginDrawing(lead ws.Effect) []ws.Effect {
	s.phase = phaseDrawing
	s.secondsLeft = RoundSeconds
	return []ws.Effect{
		lead,
		s.pushState(),
		ws.StartCountdown{Seconds: RoundSeconds},
	}
}

func (s *state) nextDrawer() string {
	if len(s.drawerOrder) == 0 {
		return ""
	}
	pid := s.drawerOrder[s.drawerIdx%len(s.drawerOrder)]
	s.drawerIdx = (s.drawerIdx + 1) % len(s.drawerOrder)
	return pid
}

// pushState sends each player their view of the room: the drawer sees
// the word, everyone else a masked form.
func (s *state) pushState() ws.Effect {
	return ws.BroadcastEach{View: func(pid string) (any, bool) {
		var wordView string
		switch {
		case s.chosen && s.word != "":
			if pid == s.drawer {
				wordView = s.word
			} else {
				wordView = maskWord(s.word)
			}
		case pid == s.drawer && s.phase == phaseChoosing:
			wordView = "(choosing a word)"
		}
		return map[string]any{
			"type":        "state",
			"players":     s.players,
			"drawer":      s.drawer,
			"word":        wordView,
			"secondsLeft": s.secondsLeft,
			"strokes":     s.strokes,
			"started":     s.phase != phaseIdle,
		}, true
	}}
}

func (s *state) Summary() map[string]any {
	return map[string]any{
		"started":     s.phase != phaseIdle,
		"secondsLeft": s.secondsLeft,
	}
}

// maskWord hides every letter but keeps word boundaries visible.
func maskWord(w string) string {
	parts := make([]string, 0, len(w))
	for _, ch := range w {
		if ch == ' ' {
			parts = append(parts, " ")
		} else {
			parts = append(parts, "_")
		}
	}
	return strings.Join(parts, " ")
}
