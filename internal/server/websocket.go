package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

func (s *Server) handleLobbySocket(w http.ResponseWriter, r *http.Request) {
	if !isLobbySocketPath(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	conn, c, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	s.logger.Info("ws connected", "channel", "lobby", "conn_id", c.id, "remote", r.RemoteAddr)
	go s.serveSession(conn, c, newLobbySession(c, s.hub, s.store, s.logger))
}

func (s *Server) handleGameSocket(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameSocketPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, c, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	s.logger.Info("ws connected", "channel", "game", "game_id", gameID, "conn_id", c.id, "remote", r.RemoteAddr)
	go s.serveSession(conn, c, newGameSession(c, s.hub, s.store, s.logger, gameID))
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, *client, bool) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, nil, false
	}
	c := newClient(conn, s.cfg.SendQueueSize)
	go c.writePump(s.writeWait())
	return conn, c, true
}

// serveSession is the per-connection read loop. Messages are handled
// one at a time; a frame that is not valid JSON or carries no type
// discriminator ends the connection after a generic error frame.
func (s *Server) serveSession(conn *websocket.Conn, c *client, sess session) {
	defer sess.onDisconnect()
	if err := sess.onConnect(); err != nil {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("ws disconnected", "conn_id", c.id, "error", err)
			return
		}
		req, err := decodeRequest(data)
		if err != nil {
			c.enqueue(encodeError("malformed message"))
			return
		}
		sess.onMessage(req)
	}
}
