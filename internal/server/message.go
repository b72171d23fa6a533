package server

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// messageKind values are wire identifiers shared with clients and must
// not be renamed.
type messageKind string

const (
	kindGameInfoRequest      messageKind = "game_info_request"
	kindGameInfoResponse     messageKind = "game_info_response"
	kindGameInfo             messageKind = "game_info"
	kindPlayerJoinedRequest  messageKind = "player_joined_request"
	kindPlayerJoinedResponse messageKind = "player_joined_response"
	kindPlayerLeftRequest    messageKind = "player_left_request"
	kindPlayerLeftResponse   messageKind = "player_left_response"
	kindPointUpdateRequest   messageKind = "update_point_request"
	kindPointUpdateResponse  messageKind = "update_point_response"
	kindGetPointsRequest     messageKind = "get_points_request"
	kindGetPointsResponse    messageKind = "get_points_response"
	kindPointUpdate          messageKind = "point_update"
	kindFinishGameRequest    messageKind = "finish_game_request"
	kindFinishGameResponse   messageKind = "finish_game_response"
	kindFinishGame           messageKind = "finish_game"
	kindCreateGameRequest    messageKind = "create_game_request"
	kindCreateGameResponse   messageKind = "create_game_response"
)

var errMalformedMessage = errors.New("malformed message")

// encodeMessage builds a server-to-client frame: the payload fields
// flattened into one JSON object alongside the message_type key.
func encodeMessage(kind messageKind, fields map[string]any) ([]byte, error) {
	payload := make(map[string]any, len(fields)+1)
	for key, value := range fields {
		payload[key] = value
	}
	payload["message_type"] = string(kind)
	return json.Marshal(payload)
}

// encodeError builds the error frame sent before a connection is
// dropped or a request is refused.
func encodeError(message string) []byte {
	data, _ := json.Marshal(map[string]string{"type": "error", "error": message})
	return data
}

// request is a decoded frame. Client requests carry the discriminator
// under "type"; server envelopes use "message_type". Both are accepted,
// everything else stays in Fields.
type request struct {
	Kind   messageKind
	Fields map[string]any
}

func decodeRequest(data []byte) (request, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return request{}, errMalformedMessage
	}
	raw, ok := fields["type"].(string)
	if !ok || raw == "" {
		raw, ok = fields["message_type"].(string)
		if !ok || raw == "" {
			return request{}, errMalformedMessage
		}
		delete(fields, "message_type")
		return request{Kind: messageKind(raw), Fields: fields}, nil
	}
	delete(fields, "type")
	return request{Kind: messageKind(raw), Fields: fields}, nil
}

// sender returns the opaque correlation id, if the client included one.
func (r request) sender() (any, bool) {
	value, ok := r.Fields["sender"]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// uintField reads an id field. JSON numbers arrive as float64; numeric
// strings are accepted as well since some clients stringify ids.
func (r request) uintField(name string) (uint, bool) {
	switch value := r.Fields[name].(type) {
	case float64:
		if value < 0 || value != math.Trunc(value) {
			return 0, false
		}
		return uint(value), true
	case string:
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	}
	return 0, false
}

func (r request) intField(name string) (int, bool) {
	switch value := r.Fields[name].(type) {
	case float64:
		if value != math.Trunc(value) {
			return 0, false
		}
		return int(value), true
	case string:
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
