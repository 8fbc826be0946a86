package block

// Parse rebuilds a sealed block from the bytes returned by Bytes.
func Parse(bytes []byte) (*Block, error) {
	blk := &Block{}
	if _, err := Codec.Unmarshal(bytes, blk); err != nil {
		return nil, err
	}
	blk.initialize(bytes)
	return blk, nil
}
