package server

import "log/slog"

// Notifier turns store mutations into room broadcasts. It is the only
// component that broadcasts; request handlers answer their own client
// and nothing else.
type Notifier struct {
	store  Store
	hub    *roomHub
	logger *slog.Logger
}

func NewNotifier(store Store, hub *roomHub, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{store: store, hub: hub, logger: logger}
}

// PlayersChanged pushes the refreshed game to the lobby, but only when
// the mutated game is the current one. Membership edits on archived
// games stay quiet.
func (n *Notifier) PlayersChanged(game *Game) {
	if game == nil {
		return
	}
	current, err := n.store.CurrentGame()
	if err != nil {
		n.logger.Error("load current game", "error", err)
		return
	}
	if current == nil || current.ID != game.ID {
		return
	}
	n.broadcast(lobbyRoom, kindGameInfo, map[string]any{"game": current})
}

// GameSaved refreshes the lobby when the saved game is the current one
// and tells the game's own room when it just finished.
func (n *Notifier) GameSaved(game *Game) {
	if game == nil {
		return
	}
	current, err := n.store.CurrentGame()
	if err != nil {
		n.logger.Error("load current game", "error", err)
	} else if current != nil && current.ID == game.ID {
		n.broadcast(lobbyRoom, kindGameInfo, map[string]any{"game": game})
	}
	if game.Finished() {
		n.broadcast(gameRoom(game.ID), kindFinishGame, nil)
	}
}

// PointSaved fans the score change out to the game's room on every
// save, with no filtering.
func (n *Notifier) PointSaved(point *Point) {
	if point == nil {
		return
	}
	n.broadcast(gameRoom(point.Game), kindPointUpdate, map[string]any{
		"player":     point.Player,
		"point_type": point.Type,
		"value":      point.Value,
	})
}

func (n *Notifier) broadcast(room string, kind messageKind, fields map[string]any) {
	data, err := encodeMessage(kind, fields)
	if err != nil {
		n.logger.Error("encode broadcast", "kind", kind, "room", room, "error", err)
		return
	}
	n.hub.Broadcast(room, data)
}
