package session

import "encoding/json"

type CreateRequest struct {
	SaveID    string
	Profile   json.RawMessage
	Resources map[string]int
}

type CreateResponse struct {
	SaveID  string `json:"save_id"`
	Version int64  `json:"version"`
}

type OpenRequest struct {
	SaveID  string
	NewGame bool
}

type OpenResponse struct {
	SaveID     string `json:"save_id"`
	Version    int64  `json:"version"`
	State      string `json:"state"`
	Placements int    `json:"placements"`
}

type SaveResponse struct {
	SaveID  string `json:"save_id"`
	Version int64  `json:"version"`
}
