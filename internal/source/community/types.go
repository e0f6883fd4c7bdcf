package community

// NotificationsResponse is the response from GET /notifications.
type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// Notification is a notification as returned by the API. Type is kept as a
// raw string so unknown values can be detected and dropped.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
	UserID    string `json:"userId,omitempty"`
	UserName  string `json:"userName,omitempty"`
}

// UnreadCountResponse is the response from GET /notifications/unread-count/{userId}.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkReadRequest is the body of PUT /notifications/{id}/read.
type MarkReadRequest struct {
	UserID string `json:"userId"`
}

// ErrorResponse is the error envelope returned on non-2xx responses.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Details string `json:"message,omitempty"`
}

// Message returns the most specific text the envelope carries.
func (e ErrorResponse) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Error
}
