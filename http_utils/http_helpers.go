package http_utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

func SendResponse(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

// ValidateStruct runs the validator and, on failure, shapes the field
// errors into a response body. Returns nil when s is valid.
func ValidateStruct(v *validator.Validate, s interface{}) *ValidationErrorResponse {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	return &ValidationErrorResponse{
		BaseResponse: BaseResponse{
			Success: false,
			Message: "invalid body, validation failed",
		},
		Errors: lo.Map(err.(validator.ValidationErrors), func(item validator.FieldError, index int) string {
			return item.Error()
		}),
	}
}
