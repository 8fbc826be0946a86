package genesis

// Data is what the genesis block decodes to. The genesis body is never
// decoded generically.
const Data = "Genesis Block"

// Payload is the body stored in the genesis block.
type Payload struct {
	Data string `json:"data"`
}

// New returns the genesis payload.
func New() Payload {
	return Payload{Data: Data}
}
