package block

import (
	"encoding/json"
	"fmt"

	"github.com/MetalBlockchain/metalgo/ids"
	"github.com/MetalBlockchain/metalgo/utils/formatting"

	avajson "github.com/MetalBlockchain/metalgo/utils/json"
)

type jsonBlock struct {
	Hash              ids.ID         `json:"hash"`
	Height            avajson.Uint64 `json:"height"`
	Body              string         `json:"body"`
	Time              avajson.Uint64 `json:"time"`
	PreviousBlockHash *ids.ID        `json:"previousBlockHash"`
}

// MarshalJSON renders the body hex encoded and the genesis parent as null.
func (b *Block) MarshalJSON() ([]byte, error) {
	body, err := formatting.Encode(formatting.HexNC, b.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode block body: %w", err)
	}
	tmp := jsonBlock{
		Hash:   b.BlockID,
		Height: avajson.Uint64(b.Hght),
		Body:   body,
		Time:   avajson.Uint64(b.Time),
	}
	if b.Hght > 0 {
		parent := b.PrntID
		tmp.PreviousBlockHash = &parent
	}
	return json.Marshal(tmp)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	tmp := jsonBlock{}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	body, err := formatting.Decode(formatting.HexNC, tmp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b.BlockID = tmp.Hash
	b.Hght = uint64(tmp.Height)
	b.Body = body
	b.Time = uint64(tmp.Time)
	b.PrntID = ids.Empty
	if tmp.PreviousBlockHash != nil {
		b.PrntID = *tmp.PreviousBlockHash
	}
	b.bytes, err = Codec.Marshal(CodecVersion, b)
	return err
}
