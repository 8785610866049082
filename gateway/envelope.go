package gateway

import (
	"bytes"
	"encoding/json"
)

// envelope is the superset of the wrapping shapes the backend emits:
// {success:true,data:...}, {status:"ok",data:...}, or a bare payload.
// It is decoded once here; callers never unwrap ad hoc.
type envelope struct {
	Success *bool           `json:"success"`
	Status  json.RawMessage `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// DecodeEnvelope unwraps a response body into its payload:
//
//  1. {"success":true,"data":X}  => X
//  2. {"data":X} (no success)    => X
//  3. bare JSON array            => itself
//  4. anything else              => passthrough unchanged
//
// Unrecognized shapes are never an error; the last-resort passthrough keeps
// flexible endpoints usable and leaves validation to the caller's decode.
// Idempotent: already-canonical payloads come back unchanged.
func DecodeEnvelope(raw []byte) json.RawMessage {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return raw
	}

	if trimmed[0] == '[' {
		return raw
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 {
			if env.Success == nil || *env.Success {
				return env.Data
			}
		}
	}

	return raw
}
