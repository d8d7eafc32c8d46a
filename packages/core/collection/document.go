package collection

// KeyValue is the document form of model.KeyValue. An omitted enabled flag
// means enabled.
type KeyValue struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

type BasicAuth struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

type BearerAuth struct {
	Token string `json:"token" yaml:"token"`
}

type APIKeyAuth struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	AddTo string `json:"addTo" yaml:"addTo"`
}

type Auth struct {
	Type   string      `json:"type" yaml:"type"`
	Basic  *BasicAuth  `json:"basic,omitempty" yaml:"basic,omitempty"`
	Bearer *BearerAuth `json:"bearer,omitempty" yaml:"bearer,omitempty"`
	APIKey *APIKeyAuth `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

// Body holds every variant. JSON is either a string of serialized JSON or a
// structured value; FormData serves both form body types.
type Body struct {
	Type     string     `json:"type" yaml:"type"`
	Raw      string     `json:"raw,omitempty" yaml:"raw,omitempty"`
	JSON     any        `json:"json,omitempty" yaml:"json,omitempty"`
	FormData []KeyValue `json:"formData,omitempty" yaml:"formData,omitempty"`
}

type Request struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Method      string     `json:"method,omitempty" yaml:"method,omitempty"`
	URL         string     `json:"url" yaml:"url"`
	QueryParams []KeyValue `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Headers     []KeyValue `json:"headers,omitempty" yaml:"headers,omitempty"`
	Auth        *Auth      `json:"auth,omitempty" yaml:"auth,omitempty"`
	Body        *Body      `json:"body,omitempty" yaml:"body,omitempty"`
	// Timestamps are Unix milliseconds.
	CreatedAt int64 `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

type Collection struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Requests    []Request `json:"requests" yaml:"requests"`
	CreatedAt   int64     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   int64     `json:"updatedAt" yaml:"updatedAt"`
}

// Find returns the request whose ID or name matches ref.
func (c *Collection) Find(ref string) (*Request, bool) {
	for i := range c.Requests {
		if c.Requests[i].ID == ref {
			return &c.Requests[i], true
		}
	}
	for i := range c.Requests {
		if c.Requests[i].Name == ref {
			return &c.Requests[i], true
		}
	}
	return nil, false
}

type Environment struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Variables []KeyValue `json:"variables" yaml:"variables"`
	IsActive  bool       `json:"isActive" yaml:"isActive"`
}

// Values returns the enabled variables as a map.
func (e *Environment) Values() map[string]string {
	out := make(map[string]string, len(e.Variables))
	for _, kv := range e.Variables {
		if kv.IsEnabled() && kv.Key != "" {
			out[kv.Key] = kv.Value
		}
	}
	return out
}

func (kv KeyValue) IsEnabled() bool {
	return kv.Enabled == nil || *kv.Enabled
}
