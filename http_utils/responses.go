package http_utils

// BaseResponse is the envelope shared by every JSON reply on the HTTP
// surface: an outcome flag and a short human-readable message.
type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse carries a result payload alongside the envelope, e.g.
// the issued token from the username endpoint.
type DataResponse struct {
	BaseResponse
	Data interface{} `json:"data"`
}

// ValidationErrorResponse lists the field errors of a rejected request
// body.
type ValidationErrorResponse struct {
	BaseResponse
	Errors []string `json:"errors"`
}

func NewBaseResponse(success bool, msg string) BaseResponse {
	return BaseResponse{Success: success, Message: msg}
}
