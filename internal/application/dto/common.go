package dto

// ErrorResponse respuesta de error uniforme de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Available solo en INSUFFICIENT_STOCK: lo que sí era cubrible.
	Available *int64 `json:"available,omitempty"`
}
