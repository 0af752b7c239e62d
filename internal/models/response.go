package models

// Машиночитаемые коды ошибок для API ответов.
// Эти коды стабильны и используются клиентами (web/mobile) для ветвления логики.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeMissingID          = "MISSING_ID"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnknownVehicleType = "UNKNOWN_VEHICLE_TYPE"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConfigNotFound     = "CONFIG_NOT_FOUND"
	ErrCodeVersionConflict    = "VERSION_CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// APIError - тело ошибки внутри стандартного конверта ответа.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse - стандартный конверт ответа API: { success, data } либо { success, error }.
// Тот же формат используют все остальные контроллеры платформы.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// SuccessResponse оборачивает данные в стандартный конверт.
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// ErrorResponse формирует конверт с ошибкой и машиночитаемым кодом.
func ErrorResponse(code, message string) APIResponse {
	return APIResponse{Success: false, Error: &APIError{Code: code, Message: message}}
}
