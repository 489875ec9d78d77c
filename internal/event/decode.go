package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns an event payload as T. Payloads published on the
// MemoryBus are already T or *T; payloads read off the SSE stream are raw JSON;
// anything else (maps from a dead-letter replay) is converted through JSON.
func DecodePayload[T any](input interface{}) (T, error) {
	var result T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v == nil {
			return result, fmt.Errorf("%s: nil %T", ErrMsgDecodePayload, v)
		}
		return *v, nil
	case json.RawMessage:
		return result, unmarshalPayload(v, &result)
	case []byte:
		return result, unmarshalPayload(v, &result)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return result, fmt.Errorf("%s: %w", ErrMsgDecodePayload, err)
	}
	return result, unmarshalPayload(data, &result)
}

func unmarshalPayload[T any](data []byte, out *T) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDecodePayload, err)
	}
	return nil
}
