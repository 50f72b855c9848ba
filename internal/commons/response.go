package commons

type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Meta    *Meta    `json:"meta,omitempty"`
}

// Meta carries pagination state for list endpoints. NextCursor is opaque to
// clients; an empty value means the last page.
type Meta struct {
	NextCursor string `json:"nextCursor,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func PagedResponse[T any](message string, data T, nextCursor string) Response[T] {
	resp := SuccessResponse(message, data)
	if nextCursor != "" {
		resp.Meta = &Meta{NextCursor: nextCursor}
	}
	return resp
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
