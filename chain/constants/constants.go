package constants

const (
	// Version of the starchain binary and API.
	Version = "v0.1.0"

	// ServiceName is the JSON-RPC service prefix, e.g. "starchain.getHeight".
	ServiceName = "starchain"
)
