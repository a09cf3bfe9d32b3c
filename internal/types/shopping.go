package types

// ShoppingListEmailRequest asks for the shopping list to be mailed
type ShoppingListEmailRequest struct {
	Email  string `json:"email" form:"email" binding:"omitempty,email"`
	Format string `json:"format" form:"format"`
}

// StatusResponse is a plain acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the shape of every error body
type ErrorResponse struct {
	Error string `json:"error"`
}
