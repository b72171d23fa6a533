package server

// EventPayload is the jsonb body of an audit event row written by the
// database-backed store.
type EventPayload struct {
	GameID    uint `json:"game_id,omitempty"`
	PlayerID  uint `json:"player_id,omitempty"`
	PointType int  `json:"point_type,omitempty"`
	Value     int  `json:"value,omitempty"`
	Finished  bool `json:"finished,omitempty"`
}
