// pkg/registry/schema.go
package registry

// ActivityRegistry lists every task type a process model may reference.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	TaskType    string   `json:"taskType"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Timeout     int      `json:"timeout"` // milliseconds
	Retries     int      `json:"retries"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	ErrorCodes  []string `json:"errorCodes"`
	Tags        []string `json:"tags,omitempty"`
}
