package models

// RouteData is one row of the routes search view.
type RouteData struct {
	ID              int64  `json:"id"`
	OriginName      string `json:"originName"`
	DestinationName string `json:"destinationName"`
	TransportType   string `json:"transportType"`
	Duration        int    `json:"duration"`
}

// RouteFilter narrows the routes search. Origin and Destination are
// exact island-name matches; Search and Location match either endpoint.
type RouteFilter struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	TransportType string `json:"transportType"`
	Location      string `json:"location"`
	Search        string `json:"search"`
	Sort          string `json:"sort"` // newest | oldest | longest | shortest
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
}

// NewRouteInput creates a route between two named islands.
type NewRouteInput struct {
	OperatorID    int64  `json:"operatorId"`
	TransportType string `json:"transportType"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Duration      int    `json:"duration"`
}

// Island is the id/name pair returned by island search.
type Island struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
