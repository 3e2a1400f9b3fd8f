package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gamehub/games/pictionary"
	"gamehub/tokens"
	"gamehub/util"
	"gamehub/ws"
)

func newTestServer(t *testing.T) (*Server, *ws.Manager) {
	maker, err := tokens.NewPasetoMaker("12345678901234567890123456789012")
	require.NoError(t, err)

	config := &util.Config{
		Port:          "8080",
		StaticDir:     t.TempDir(),
		TokenKey:      "12345678901234567890123456789012",
		TokenDuration: time.Minute,
	}

	manager := ws.NewManager(pictionary.New(), ws.NewRegistry(), zap.NewNop())
	server := NewServer(config, zap.NewNop(), maker, []*ws.Manager{manager})
	return server, manager
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	request := httptest.NewRequest(http.MethodGet, "/health", nil)
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["time"])
}

func TestListRooms(t *testing.T) {
	t.Run("empty list is an empty array", func(t *testing.T) {
		server, _ := newTestServer(t)

		request := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		response := httptest.NewRecorder()
		server.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusOK, response.Code)
		require.JSONEq(t, "[]", response.Body.String())
	})

	t.Run("live rooms are listed with their summaries", func(t *testing.T) {
		server, manager := newTestServer(t)
		srv := httptest.NewServer(server.Handler())
		t.Cleanup(srv.Close)

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + manager.GameName()
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })

		require.NoError(t, conn.WriteJSON(map[string]any{
			"type": "join", "roomId": "r1", "name": "ada", "mode": "create",
		}))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for {
			var frame map[string]any
			require.NoError(t, conn.ReadJSON(&frame))
			if frame["type"] == "joined" {
				break
			}
		}

		resp, err := http.Get(srv.URL + "/rooms")
		require.NoError(t, err)
		defer resp.Body.Close()

		var rows []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 1)
		require.Equal(t, "r1", rows[0]["roomId"])
		require.Equal(t, manager.GameName(), rows[0]["game"])
		require.EqualValues(t, 1, rows[0]["players"])
	})
}

func TestTokenGenerator(t *testing.T) {
	server, _ := newTestServer(t)

	post := func(t *testing.T, body any) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		request := httptest.NewRequest(http.MethodPost, "/auth/username", bytes.NewReader(data))
		response := httptest.NewRecorder()
		server.Handler().ServeHTTP(response, request)
		return response
	}

	t.Run("returns a token (happy case)", func(t *testing.T) {
		response := post(t, map[string]string{"username": "judge"})

		require.Equal(t, http.StatusOK, response.Code)

		var body struct {
			Success bool              `json:"success"`
			Data    map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
		require.True(t, body.Success)
		require.Equal(t, "judge", body.Data["username"])
		require.NotEmpty(t, body.Data["token"])
		require.NotEmpty(t, body.Data["id"])
	})

	t.Run("missing username", func(t *testing.T) {
		response := post(t, map[string]string{})
		require.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("username too long", func(t *testing.T) {
		response := post(t, map[string]string{"username": strings.Repeat("a", 40)})
		require.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)
}
