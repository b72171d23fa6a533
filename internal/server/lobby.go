package server

import (
	"errors"
	"log/slog"
)

// lobbySession serves the shared lobby channel: the current open game,
// membership changes and game creation.
type lobbySession struct {
	baseSession
}

func newLobbySession(c *client, hub *roomHub, store Store, logger *slog.Logger) *lobbySession {
	return &lobbySession{
		baseSession: baseSession{
			client: c,
			hub:    hub,
			store:  store,
			logger: logger,
			room:   lobbyRoom,
		},
	}
}

func (l *lobbySession) onConnect() error {
	l.join()
	game, err := l.store.CurrentGame()
	if err != nil {
		l.fail("load current game", err)
		return nil
	}
	l.send(kindGameInfoResponse, map[string]any{"game": game})
	return nil
}

func (l *lobbySession) onMessage(req request) {
	switch req.Kind {
	case kindGameInfoRequest:
		l.handleGameInfo(req)
	case kindPlayerJoinedRequest:
		l.handleMembership(req, true)
	case kindPlayerLeftRequest:
		l.handleMembership(req, false)
	case kindCreateGameRequest:
		l.handleCreateGame(req)
	default:
		l.logger.Debug("unhandled lobby message", "kind", req.Kind, "conn_id", l.client.id)
	}
}

func (l *lobbySession) handleGameInfo(req request) {
	game, err := l.store.CurrentGame()
	if err != nil {
		l.fail("load current game", err)
		return
	}
	if sender, ok := req.sender(); ok {
		l.send(kindGameInfoResponse, map[string]any{"game": game, "sender": sender})
	}
}

func (l *lobbySession) handleMembership(req request, joined bool) {
	current, err := l.store.CurrentGame()
	if err != nil {
		l.fail("load current game", err)
		return
	}
	gameID, ok := req.uintField("game")
	if !ok || current == nil || current.ID != gameID {
		l.sendError("modifying archived game is not allowed")
		return
	}
	playerID, ok := req.uintField("player")
	if !ok {
		l.sendError("given user does not exist")
		return
	}
	user, err := l.store.GetUser(playerID)
	if errors.Is(err, ErrUserNotFound) {
		l.sendError("given user does not exist")
		return
	}
	if err != nil {
		l.fail("load user", err)
		return
	}

	var updated *Game
	kind := kindPlayerJoinedResponse
	if joined {
		updated, err = l.store.AddPlayer(current.ID, user.ID)
	} else {
		kind = kindPlayerLeftResponse
		updated, err = l.store.RemovePlayer(current.ID, user.ID)
	}
	if err != nil {
		l.fail("update game membership", err)
		return
	}
	if sender, ok := req.sender(); ok {
		l.send(kind, map[string]any{"game": updated, "sender": sender})
	}
}

func (l *lobbySession) handleCreateGame(req request) {
	if _, err := l.store.CreateGame(); err != nil {
		l.fail("create game", err)
		return
	}
	if sender, ok := req.sender(); ok {
		l.send(kindCreateGameResponse, map[string]any{"sender": sender})
	}
}
