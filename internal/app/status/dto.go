package status

type ItemView struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Obtained bool   `json:"obtained"`
}

type CostView struct {
	Kind      string  `json:"kind"`
	Paid      bool    `json:"paid"`
	Recurring bool    `json:"recurring"`
	Discount  float64 `json:"discount_rate"`
}

type PlacementView struct {
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	Location      string     `json:"location,omitempty"`
	ContainerType string     `json:"container_type"`
	Loaded        bool       `json:"loaded"`
	Cost          *CostView  `json:"cost,omitempty"`
	Items         []ItemView `json:"items"`
}

type Response struct {
	SaveID     string          `json:"save_id"`
	Version    int64           `json:"version"`
	State      string          `json:"state"`
	Placements []PlacementView `json:"placements"`
	Modules    []string        `json:"modules"`
	Resources  map[string]int  `json:"resources"`
	Flags      map[string]bool `json:"flags"`
	Containers []string        `json:"containers"`
}
