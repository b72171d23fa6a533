package server

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := map[string]any{
		"game":   float64(7),
		"player": float64(3),
		"sender": "abc",
	}
	data, err := encodeMessage(kindPointUpdate, fields)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if decoded["message_type"] != "point_update" {
		t.Fatalf("expected message_type point_update, got %v", decoded["message_type"])
	}
	for key, want := range fields {
		if decoded[key] != want {
			t.Fatalf("expected field %s=%v, got %v", key, want, decoded[key])
		}
	}

	req, err := decodeRequest(data)
	if err != nil {
		t.Fatalf("decode encoded frame: %v", err)
	}
	if req.Kind != kindPointUpdate {
		t.Fatalf("expected kind point_update after round trip, got %s", req.Kind)
	}
	for key, want := range fields {
		if req.Fields[key] != want {
			t.Fatalf("round trip lost field %s: got %v, want %v", key, req.Fields[key], want)
		}
	}
}

func TestEncodeMessageFlattensPayload(t *testing.T) {
	data, err := encodeMessage(kindGameInfoResponse, map[string]any{"game": nil})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected flat envelope with 2 keys, got %v", decoded)
	}
	if value, ok := decoded["game"]; !ok || value != nil {
		t.Fatalf("expected game key with null value, got %v", decoded)
	}
}

func TestDecodeRequest(t *testing.T) {
	req, err := decodeRequest([]byte(`{"type":"get_points_request","game":7,"player":3,"sender":"x"}`))
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Kind != kindGetPointsRequest {
		t.Fatalf("expected kind get_points_request, got %s", req.Kind)
	}
	if game, ok := req.uintField("game"); !ok || game != 7 {
		t.Fatalf("expected game=7, got %d (ok=%v)", game, ok)
	}
	if player, ok := req.uintField("player"); !ok || player != 3 {
		t.Fatalf("expected player=3, got %d (ok=%v)", player, ok)
	}
	sender, ok := req.sender()
	if !ok || sender != "x" {
		t.Fatalf("expected sender x, got %v", sender)
	}
}

func TestDecodeRequestMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{"type":`,
		"missing type":     `{"game":7}`,
		"non-string type":  `{"type":42}`,
		"empty type":       `{"type":""}`,
		"array not object": `[1,2,3]`,
	}
	for name, raw := range cases {
		if _, err := decodeRequest([]byte(raw)); !errors.Is(err, errMalformedMessage) {
			t.Fatalf("%s: expected malformed message error, got %v", name, err)
		}
	}
}

func TestRequestFieldCoercion(t *testing.T) {
	req, err := decodeRequest([]byte(`{"type":"update_point_request","player":"3","point_type":2,"value":-4}`))
	if err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if player, ok := req.uintField("player"); !ok || player != 3 {
		t.Fatalf("expected string player coerced to 3, got %d (ok=%v)", player, ok)
	}
	if value, ok := req.intField("value"); !ok || value != -4 {
		t.Fatalf("expected value=-4, got %d (ok=%v)", value, ok)
	}
	if _, ok := req.uintField("missing"); ok {
		t.Fatal("expected missing field to report not ok")
	}
	if _, ok := req.uintField("value"); ok {
		t.Fatal("expected negative value to fail uint coercion")
	}
}

func TestEncodeErrorFrame(t *testing.T) {
	var decoded map[string]string
	if err := json.Unmarshal(encodeError("boom"), &decoded); err != nil {
		t.Fatalf("unmarshal error frame: %v", err)
	}
	if decoded["type"] != "error" || decoded["error"] != "boom" {
		t.Fatalf("unexpected error frame %v", decoded)
	}
}
