// pkg/registry/schema.go
package registry

// ActivityRegistry catalogues the job types a worker process serves.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one task type. Input and output schemas are informal
// field-to-type maps; a trailing "?" marks an optional field.
type Activity struct {
	ID                   string            `json:"id"`
	DisplayName          string            `json:"displayName"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	Version              string            `json:"version"`
	TaskType             string            `json:"taskType"`
	ImplementationStatus string            `json:"implementationStatus"`
	InputSchema          map[string]string `json:"inputSchema"`
	OutputSchema         map[string]string `json:"outputSchema"`
	ErrorCodes           []string          `json:"errorCodes"`
	Timeout              string            `json:"timeout"`
	Retries              int               `json:"retries"`
	Workflows            []string          `json:"workflows"`
	Tags                 []string          `json:"tags"`
}
