package models

// Greeting is the payload returned by the named greeting endpoint.
type Greeting struct {
	Message string `json:"message"`
}

// NewGreeting builds the greeting addressed to name.
func NewGreeting(name string) Greeting {
	return Greeting{Message: "Hello " + name + "!"}
}
