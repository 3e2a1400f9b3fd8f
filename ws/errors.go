package ws

import "errors"

// Admission errors. They are reported to the requesting connection only
// and never touch room state.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomExists     = errors.New("room already exists")
	ErrRoomFull       = errors.New("room is full")
	ErrNameTaken      = errors.New("name already taken")
	ErrGameInProgress = errors.New("game in progress")
	ErrBadPassword    = errors.New("wrong room password")
)

// joinErrorReason maps an admission error to the wire reason carried in
// a join_error frame.
func joinErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "no_such_room"
	case errors.Is(err, ErrRoomExists):
		return "room_already_exists"
	case errors.Is(err, ErrRoomFull):
		return "room_full"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, ErrBadPassword):
		return "bad_password"
	default:
		return "join_failed"
	}
}
