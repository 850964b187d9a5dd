// Package wire defines the JSON bodies shared by the relay server and its
// clients.
package wire

// StatusOnline is the only status the relay ever reports, if the process
// answers at all it is online.
const StatusOnline = "online"

type Message struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type PostMessageRequest struct {
	Username string `json:"username"`
	Message  string `json:"message" validate:"required"`
}

type PostMessageResponse struct {
	Success bool    `json:"success"`
	Message Message `json:"message"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

type StatusResponse struct {
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
}

type SearchResponse struct {
	Results []Message `json:"results"`
	Count   int       `json:"count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
