package hub

import "encoding/json"

// Frame is one encoded snapshot, tagged with the sequence number of the
// cycle that produced it.
type Frame struct {
	Seq  int64
	Data []byte
}

// Encode marshals v into a frame.
func Encode(seq int64, v any) (Frame, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Seq: seq, Data: data}, nil
}
