package handlers

const (
	msgMissingFields      = "Username and password required"
	msgInvalidCredentials = "Invalid credentials"
	msgTitleRequired      = "Title is required"
	msgQueryRequired      = "Query is required"
	msgTaskNotFound       = "Task not found"
	msgRouteNotFound      = "Route not found"
	msgInvalidBody        = "Invalid request body"
	msgInternal           = "Something went wrong!"
)
