package dto

// Status de las respuestas envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse cuerpo de error HTTP. Fields lleva el detalle por campo de los errores de validación.
type ErrorResponse struct {
	Status      string            `json:"status"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Description string            `json:"description,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// IDsRequest cuerpo de remove: ids a eliminar.
type IDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// RemoveResult resultado de remove por lotes.
type RemoveResult struct {
	Removed  int       `json:"removed"`
	Failures []Failure `json:"failures"`
}

// Failure error de un registro concreto en operaciones por lotes.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
