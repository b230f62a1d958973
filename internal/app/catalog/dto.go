package catalog

type ContainerView struct {
	Name         string `json:"name"`
	Instantiate  bool   `json:"instantiate"`
	Capabilities string `json:"capabilities"`
}

type ListResponse struct {
	Catalog       string          `json:"catalog"`
	DefaultSingle string          `json:"default_single"`
	DefaultMulti  string          `json:"default_multi"`
	Containers    []ContainerView `json:"containers"`
	Available     []string        `json:"available,omitempty"`
}
