package selection

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a selection stored as code point offsets into the text of one
// surface.
type Snapshot struct {
	Surface int `cbor:"1,keyasint" json:"surface"`
	Start   int `cbor:"2,keyasint" json:"start"`
	End     int `cbor:"3,keyasint" json:"end"`
}

// Collapsed reports whether the snapshot describes a caret.
func (s Snapshot) Collapsed() bool {
	return s.Start == s.End
}

// Valid reports whether the offsets satisfy 0 <= Start <= End.
func (s Snapshot) Valid() bool {
	return s.Surface >= 0 && s.Start >= 0 && s.Start <= s.End
}

// Encode serializes a snapshot as CBOR.
func Encode(s Snapshot) ([]byte, error) {
	data, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return data, nil
}

// Decode parses a CBOR snapshot produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("cbor unmarshal: %w", err)
	}
	if !s.Valid() {
		return Snapshot{}, fmt.Errorf("%w: surface %d [%d, %d]", ErrInvalidSnapshot, s.Surface, s.Start, s.End)
	}
	return s, nil
}
