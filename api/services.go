package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"gamehub/http_utils"
	"gamehub/util"
	"gamehub/ws"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	http_utils.SendResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListRooms aggregates the live rooms of every game for lobby and
// debugging display. Read-only.
func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	rows := lo.Flatten(lo.Map(s.managers, func(m *ws.Manager, _ int) []map[string]any {
		return m.Snapshots()
	}))
	if rows == nil {
		rows = []map[string]any{}
	}

	http_utils.SendResponse(w, http.StatusOK, rows)
}

type usernameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=24"`
}

// TokenGenerator issues an ephemeral identity token for the username
// passed as request body.
func (s *Server) TokenGenerator(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http_utils.SendResponse(w, http.StatusBadRequest,
			http_utils.NewBaseResponse(false, "invalid body, username required"))
		return
	}

	if vErr := http_utils.ValidateStruct(util.Validate, req); vErr != nil {
		http_utils.SendResponse(w, http.StatusBadRequest, vErr)
		return
	}

	token, payload, err := s.tokenMaker.CreateToken(req.Username, s.config.TokenDuration)
	if err != nil {
		s.logger.Error("create token", zap.Error(err))
		http_utils.SendResponse(w, http.StatusInternalServerError,
			http_utils.NewBaseResponse(false, ErrorMessage500))
		return
	}

	http_utils.SendResponse(w, http.StatusOK, http_utils.DataResponse{
		BaseResponse: http_utils.NewBaseResponse(true, "token created"),
		Data: map[string]string{
			"id":       payload.ID.String(),
			"username": payload.Username,
			"token":    token,
		},
	})
}
