package tasks

// TaskRequest carries the three caller-mutable fields of a task. It is used
// both for creation and for updates; id, owner and creation time are never
// accepted from the client.
type TaskRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"Two liters, whole"`
	Priority    string `json:"priority" example:"Alta"`
}

// TaskListResponse wraps a task list for the JSON API.
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total" example:"3"`
}
