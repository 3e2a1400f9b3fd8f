// Package pixelwar implements the timed pixel-grab rule module: every
// player gets a color, and when a match is running each click paints a
// cell of the shared grid. Whoever holds the most cells when the
// countdown expires wins.
package pixelwar

import (
	"encoding/json"

	"github.com/samber/lo"

	"gamehub/ws"
)

const (
	// GridSize is the number of cells on the board.
	GridSize = 36
	// MatchSeconds is the length of one match.
	MatchSeconds = 30
)

var palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4", "#42d4f4",
}

type Game struct{}

func New() *Game { return &Game{} }

func (*Game) Name() string { return "pixelwar" }

func (*Game) Policy() ws.Policy {
	return ws.Policy{ImplicitCreate: true}
}

func (*Game) NewRoom(meta ws.Meta, _ ws.Event) ws.RoomState {
	return &state{
		meta:    meta,
		players: make(map[string]*player),
		board:   make([]string, GridSize),
	}
}

type player struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type state struct {
	meta    ws.Meta
	players map[string]*player
	order   []string // join order, drives color rotation and tie-breaks
	board   []string // cell colors, "" when unpainted
	active  bool
}

func (s *state) Join(pid, name string, _ ws.Event) ([]ws.Effect, error) {
	color := palette[len(s.order)%len(palette)]
	s.players[pid] = &player{Name: name, Color: color}
	if !lo.Contains(s.order, pid) {
		s.order = append(s.order, pid)
	}

	return []ws.Effect{
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type":  ws.EventJoined,
			"pid":   pid,
			"room":  s.meta.RoomID,
			"color": color,
		}},
		// legacy frame kept for older clients
		ws.Unicast{PID: pid, Payload: map[string]any{
			"type": "welcome", "color": color,
		}},
		ws.Unicast{PID: pid, Payload: s.statePayload()},
		ws.Broadcast{Payload: map[string]any{
			"type":    ws.EventSystem,
			"msg":     name + " joined",
			"players": s.players,
		}},
	}, nil
}

func (s *state) Handle(pid string, evt ws.Event) []ws.Effect {
	switch evt.Type {
	case "start":
		return s.handleStart(pid)
	case "click":
		return s.handleClick(pid, evt)
	}
	return nil
}

func (s *state) handleStart(pid string) []ws.Effect {
	if _, ok := s.players[pid]; !ok || s.active {
		return nil
	}
	s.active = true
	for i := range s.board {
		s.board[i] = ""
	}
	return []ws.Effect{
		ws.Broadcast{Payload: s.statePayload()},
		ws.Broadcast{Payload: map[string]any{"type": "tick", "seconds": MatchSeconds}},
		ws.StartCountdown{Seconds: MatchSeconds},
	}
}

func (s *state) handleClick(pid string, evt ws.Event) []ws.Effect {
	pl, ok := s.players[pid]
	if !ok || !s.active {
		return nil
	}
	var req struct {
		Index *int `json:"idx"`
	}
	if err := json.Unmarshal(evt.Raw, &req); err != nil || req.Index == nil {
		return nil
	}
	idx := *req.Index
	if idx < 0 || idx >= len(s.board) {
		return nil
	}
	s.board[idx] = pl.Color
	return []ws.Effect{ws.Broadcast{Payload: s.statePayload()}}
}

func (s *state) Leave(pid string) []ws.Effect {
	info := s.players[pid]
	delete(s.players, pid)
	s.order = lo.Without(s.order, pid)

	name := "?"
	if info != nil {
		name = info.Name
	}
	return []ws.Effect{ws.Broadcast{Payload: map[string]any{
		"type":    ws.EventSystem,
		"msg":     name + " left",
		"players": s.players,
	}}}
}

func (s *state) Tick(remaining int) []ws.Effect {
	if !s.active {
		return nil
	}
	if remaining > 0 {
		return []ws.Effect{ws.Broadcast{Payload: map[string]any{
			"type": "tick", "seconds": remaining,
		}}}
	}

	s.active = false
	winner := "Nobody"
	best := 0
	scores := s.scores()
	// join order breaks ties, earliest joiner wins
	for _, pid := range s.order {
		if n := scores[pid]; n > best {
			best = n
			winner = s.players[pid].Name
		}
	}
	return []ws.Effect{
		ws.Broadcast{Payload: map[string]any{"type": "tick", "seconds": 0}},
		ws.Broadcast{Payload: map[string]any{
			"type": "game_over", "winner": winner, "scores": s.scoreRows(scores),
		}},
	}
}

func (s *state) Timeout() []ws.Effect { return nil }

func (s *state) Summary() map[string]any {
	return map[string]any{"active": s.active}
}

// scores counts painted cells per seated player.
func (s *state) scores() map[string]int {
	byColor := make(map[string]int)
	for _, c := range s.board {
		if c != "" {
			byColor[c]++
		}
	}
	out := make(map[string]int, len(s.players))
	for pid, pl := range s.players {
		out[pid] = byColor[pl.Color]
	}
	return out
}

func (s *state) scoreRows(scores map[string]int) []map[string]any {
	rows := make([]map[string]any, 0, len(s.order))
	for _, pid := range s.order {
		pl := s.players[pid]
		rows = append(rows, map[string]any{
			"pid": pid, "name": pl.Name, "color": pl.Color, "cells": scores[pid],
		})
	}
	return rows
}

func (s *state) statePayload() map[string]any {
	return map[string]any{
		"type":    "state",
		"board":   s.board,
		"size":    GridSize,
		"players": s.players,
		"active":  s.active,
	}
}
