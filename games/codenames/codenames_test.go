package codenames

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"gamehub/ws"
)

func evt(t *testing.T, typ string, fields map[string]any) ws.Event {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["type"] = typ
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	e, err := ws.ParseEvent(data)
	require.NoError(t, err)
	return e
}

func findBroadcast(effects []ws.Effect, typ string) map[string]any {
	for _, ef := range effects {
		if b, ok := ef.(ws.Broadcast); ok {
			if m, ok := b.Payload.(map[string]any); ok && m["type"] == typ {
				return m
			}
		}
	}
	return nil
}

func hasDestroy(effects []ws.Effect) bool {
	for _, ef := range effects {
		if _, ok := ef.(ws.DestroyRoom); ok {
			return true
		}
	}
	return false
}

// newLobby seats four players: a spymaster and an operative per team.
func newLobby(t *testing.T) *state {
	st := New().NewRoom(ws.Meta{RoomID: "r1"}, ws.Event{}).(*state)
	seats := []struct {
		pid, team, role string
	}{
		{"rs", teamRed, roleSpy},
		{"ro", teamRed, roleOp},
		{"bs", teamBlue, roleSpy},
		{"bo", teamBlue, roleOp},
	}
	for _, seat := range seats {
		_, err := st.Join(seat.pid, "player-"+seat.pid, ws.Event{})
		require.NoError(t, err)
		st.Handle(seat.pid, evt(t, "set_team_role", map[string]any{
			"team": seat.team, "role": seat.role,
		}))
	}
	return st
}

// newMatch starts a game with a deterministic board: red first, and the
// cards rewritten so indices are predictable. Cards 0-8 red, 9-16 blue,
// 17-23 neutral, 24 assassin.
func newMatch(t *testing.T) *state {
	st := newLobby(t)
	effects := st.Handle("rs", evt(t, "start_game", nil))
	require.NotNil(t, findBroadcast(effects, "game_start"))
	require.True(t, st.playing)

	for i := range st.cards {
		switch {
		case i < 9:
			st.cards[i].Color = teamRed
		case i < 17:
			st.cards[i].Color = teamBlue
		case i < 24:
			st.cards[i].Color = colorNeut
		default:
			st.cards[i].Color = colorKiller
		}
		st.cards[i].Revealed = false
	}
	st.turn = teamRed
	return st
}

func giveClue(t *testing.T, st *state, count int) {
	spy := st.spymasterOf(st.turn)
	st.Handle(spy, evt(t, "clue", map[string]any{"word": "fruit", "count": count}))
	require.NotEmpty(t, st.clueWord)
}

func TestTeamRole(t *testing.T) {
	st := New().NewRoom(ws.Meta{RoomID: "r1"}, ws.Event{}).(*state)
	_, err := st.Join("p1", "ada", ws.Event{})
	require.NoError(t, err)
	_, err = st.Join("p2", "bob", ws.Event{})
	require.NoError(t, err)

	t.Run("seat pick is acknowledged and echoed to the lobby", func(t *testing.T) {
		effects := st.Handle("p1", evt(t, "set_team_role", map[string]any{
			"team": teamRed, "role": roleSpy,
		}))

		you := effects[0].(ws.Unicast)
		require.Equal(t, "p1", you.PID)
		require.Equal(t, teamRed, you.Payload.(map[string]any)["team"])
		require.NotNil(t, findBroadcast(effects, "lobby_state"))
	})

	t.Run("second spymaster on a team is refused", func(t *testing.T) {
		effects := st.Handle("p2", evt(t, "set_team_role", map[string]any{
			"team": teamRed, "role": roleSpy,
		}))

		require.Len(t, effects, 1)
		_, ok := effects[0].(ws.Unicast)
		require.True(t, ok)
		require.Empty(t, st.players["p2"].Role)
	})

	t.Run("unknown teams and roles are ignored", func(t *testing.T) {
		require.Nil(t, st.Handle("p2", evt(t, "set_team_role", map[string]any{
			"team": "green", "role": roleOp,
		})))
		require.Nil(t, st.Handle("p2", evt(t, "set_team_role", map[string]any{
			"team": teamBlue, "role": "referee",
		})))
	})
}

func TestStartGame(t *testing.T) {
	t.Run("refused until both spymasters are seated", func(t *testing.T) {
		st := New().NewRoom(ws.Meta{RoomID: "r1"}, ws.Event{}).(*state)
		_, err := st.Join("p1", "ada", ws.Event{})
		require.NoError(t, err)
		st.Handle("p1", evt(t, "set_team_role", map[string]any{"team": teamRed, "role": roleSpy}))

		effects := st.Handle("p1", evt(t, "start_game", nil))

		require.Len(t, effects, 1)
		_, ok := effects[0].(ws.Unicast)
		require.True(t, ok)
		require.False(t, st.playing)
	})

	t.Run("deals a 9-8-7-1 board", func(t *testing.T) {
		st := newLobby(t)
		st.Handle("rs", evt(t, "start_game", nil))

		require.Len(t, st.cards, boardSize)
		counts := map[string]int{}
		for _, c := range st.cards {
			counts[c.Color]++
		}
		require.Equal(t, 7, counts[colorNeut])
		require.Equal(t, 1, counts[colorKiller])
		require.Equal(t, 9, counts[st.turn])
		require.Equal(t, 8, counts[otherTeam(st.turn)])
	})

	t.Run("joins are rejected while playing", func(t *testing.T) {
		st := newMatch(t)
		_, err := st.Join("late", "eve", ws.Event{})
		require.ErrorIs(t, err, ws.ErrGameInProgress)
	})
}

func TestClue(t *testing.T) {
	st := newMatch(t)

	t.Run("only the spymaster of the turn may give one", func(t *testing.T) {
		require.Nil(t, st.Handle("ro", evt(t, "clue", map[string]any{"word": "fruit", "count": 2})))
		require.Nil(t, st.Handle("bs", evt(t, "clue", map[string]any{"word": "fruit", "count": 2})))
	})

	t.Run("clue sets the guess allowance", func(t *testing.T) {
		st.Handle("rs", evt(t, "clue", map[string]any{"word": "fruit", "count": 2}))

		require.Equal(t, "FRUIT", st.clueWord)
		require.Equal(t, 3, st.guessesLeft)
	})

	t.Run("a second clue in the same turn is ignored", func(t *testing.T) {
		require.Nil(t, st.Handle("rs", evt(t, "clue", map[string]any{"word": "other", "count": 1})))
		require.Equal(t, "FRUIT", st.clueWord)
	})
}

func TestGuess(t *testing.T) {
	t.Run("own color keeps the turn, allowance permitting", func(t *testing.T) {
		st := newMatch(t)
		giveClue(t, st, 2)

		st.Handle("ro", evt(t, "guess", map[string]any{"idx": 0}))

		require.True(t, st.cards[0].Revealed)
		require.Equal(t, 2, st.guessesLeft)
		require.Equal(t, teamRed, st.turn)
	})

	t.Run("wrong color ends the turn", func(t *testing.T) {
		st := newMatch(t)
		giveClue(t, st, 2)

		st.Handle("ro", evt(t, "guess", map[string]any{"idx": 17}))

		require.True(t, st.cards[17].Revealed)
		require.Equal(t, teamBlue, st.turn)
		require.Empty(t, st.clueWord)
	})

	t.Run("guesses without a clue are ignored", func(t *testing.T) {
		st := newMatch(t)
		require.Nil(t, st.Handle("ro", evt(t, "guess", map[string]any{"idx": 0})))
	})

	t.Run("spymasters may not guess", func(t *testing.T) {
		st := newMatch(t)
		giveClue(t, st, 2)
		require.Nil(t, st.Handle("rs", evt(t, "guess", map[string]any{"idx": 0})))
	})

	t.Run("assassin loses immediately and closes the room", func(t *testing.T) {
		st := newMatch(t)
		giveClue(t, st, 2)

		effects := st.Handle("ro", evt(t, "guess", map[string]any{"idx": 24}))

		result := findBroadcast(effects, "result")
		require.NotNil(t, result)
		require.Equal(t, teamBlue, result["winner"])
		require.Equal(t, "assassin", result["reason"])
		require.True(t, hasDestroy(effects))
	})

	t.Run("revealing the last card wins", func(t *testing.T) {
		st := newMatch(t)
		for i := 0; i < 8; i++ {
			st.cards[i].Revealed = true
		}
		giveClue(t, st, 2)

		effects := st.Handle("ro", evt(t, "guess", map[string]any{"idx": 8}))

		result := findBroadcast(effects, "result")
		require.NotNil(t, result)
		require.Equal(t, teamRed, result["winner"])
		require.Equal(t, "all_found", result["reason"])
		require.True(t, hasDestroy(effects))
	})
}

func TestEndTurn(t *testing.T) {
	st := newMatch(t)
	giveClue(t, st, 2)

	// spymasters and the off team cannot pass
	require.Nil(t, st.Handle("rs", evt(t, "end_turn", nil)))
	require.Nil(t, st.Handle("bo", evt(t, "end_turn", nil)))

	st.Handle("ro", evt(t, "end_turn", nil))
	require.Equal(t, teamBlue, st.turn)
	require.Empty(t, st.clueWord)
	require.Zero(t, st.guessesLeft)
}

func TestBoardViews(t *testing.T) {
	st := newMatch(t)
	st.cards[0].Revealed = true

	each, ok := st.pushPlay().(ws.BroadcastEach)
	require.True(t, ok)

	spyView, ok := each.View("rs")
	require.True(t, ok)
	spyBoard := spyView.(map[string]any)["board"].([]map[string]any)
	for _, row := range spyBoard {
		require.Contains(t, row, "color")
	}

	opView, ok := each.View("ro")
	require.True(t, ok)
	opBoard := opView.(map[string]any)["board"].([]map[string]any)
	require.Contains(t, opBoard[0], "color")
	require.NotContains(t, opBoard[1], "color")
}

func TestSpymasterLeave(t *testing.T) {
	st := newMatch(t)

	effects := st.Leave("rs")

	require.False(t, st.playing)
	require.NotNil(t, findBroadcast(effects, "lobby_state"))
}

func TestSummary(t *testing.T) {
	st := newLobby(t)
	require.Equal(t, map[string]any{"phase": "lobby", "spies": 2}, st.Summary())

	st.Handle("rs", evt(t, "start_game", nil))
	summary := st.Summary()
	require.Equal(t, "play", summary["phase"])
	require.Contains(t, []any{teamRed, teamBlue}, summary["turn"])
}
