package placement

import "encoding/json"

type AddRequest struct {
	Placement json.RawMessage
	Policy    string
}

type AddResponse struct {
	Name          string   `json:"name"`
	ContainerType string   `json:"container_type"`
	Loaded        bool     `json:"loaded"`
	Items         []string `json:"items"`
}

type ClaimResponse struct {
	Placement string   `json:"placement"`
	Container string   `json:"container"`
	Given     []string `json:"given"`
}

type NotifyRequest struct {
	Event string
	Scene string
}

type NotifyResponse struct {
	Event string `json:"event"`
	State string `json:"state"`
}
