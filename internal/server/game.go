package server

import (
	"errors"
	"fmt"
	"log/slog"
)

// gameSession serves one game's channel: score updates, score reads and
// finishing the game.
type gameSession struct {
	baseSession
	gameID uint
}

func newGameSession(c *client, hub *roomHub, store Store, logger *slog.Logger, gameID uint) *gameSession {
	return &gameSession{
		baseSession: baseSession{
			client: c,
			hub:    hub,
			store:  store,
			logger: logger,
			room:   gameRoom(gameID),
		},
		gameID: gameID,
	}
}

func (g *gameSession) onConnect() error {
	g.join()
	game, err := g.store.GetGame(g.gameID)
	if errors.Is(err, ErrGameNotFound) {
		g.sendError(fmt.Sprintf("game with id %d does not exist", g.gameID))
		return err
	}
	if err != nil {
		g.fail("load game", err)
		return err
	}
	g.send(kindGameInfoResponse, map[string]any{"game": game})
	return nil
}

func (g *gameSession) onMessage(req request) {
	switch req.Kind {
	case kindPointUpdateRequest:
		g.handlePointUpdate(req)
	case kindGetPointsRequest:
		g.handleGetPoints(req)
	case kindFinishGameRequest:
		g.handleFinishGame(req)
	default:
		g.logger.Debug("unhandled game message", "kind", req.Kind, "conn_id", g.client.id)
	}
}

func (g *gameSession) handlePointUpdate(req request) {
	player, playerOK := req.uintField("player")
	pointType, typeOK := req.intField("point_type")
	value, valueOK := req.intField("value")
	if !playerOK || !typeOK || !valueOK {
		g.sendError("malformed message")
		return
	}
	point, err := g.store.UpsertPoint(g.gameID, player, pointType, value)
	if err != nil {
		g.fail("upsert point", err)
		return
	}
	if sender, ok := req.sender(); ok {
		g.send(kindPointUpdateResponse, map[string]any{
			"point_type": point.Type,
			"value":      point.Value,
			"sender":     sender,
		})
	}
}

func (g *gameSession) handleGetPoints(req request) {
	gameID, ok := req.uintField("game")
	if !ok || gameID != g.gameID {
		g.sendError("incorrect game id provided")
		return
	}
	player, ok := req.uintField("player")
	if !ok {
		g.sendError("malformed message")
		return
	}
	points, err := g.store.ListPoints(g.gameID, player)
	if err != nil {
		g.fail("list points", err)
		return
	}
	if sender, ok := req.sender(); ok {
		g.send(kindGetPointsResponse, map[string]any{"points": points, "sender": sender})
	}
}

func (g *gameSession) handleFinishGame(req request) {
	gameID, ok := req.uintField("game")
	if !ok || gameID != g.gameID {
		g.sendError("incorrect game id provided")
		return
	}
	if _, err := g.store.FinishGame(g.gameID); err != nil {
		if errors.Is(err, ErrGameNotFound) {
			g.sendError(fmt.Sprintf("game with id %d does not exist", g.gameID))
			return
		}
		g.fail("finish game", err)
		return
	}
	if sender, ok := req.sender(); ok {
		g.send(kindFinishGameResponse, map[string]any{"sender": sender})
	}
}
