package server

import "log/slog"

// session is the server side of one client connection. onConnect
// returning an error drops the connection; an error frame, if any, has
// already been queued by then.
type session interface {
	onConnect() error
	onMessage(req request)
	onDisconnect()
}

// baseSession carries what both variants need: the connection's client
// handle, the hub, the room the session lives in and the store.
type baseSession struct {
	client *client
	hub    *roomHub
	store  Store
	logger *slog.Logger
	room   string
}

func (b *baseSession) join() {
	b.hub.Join(b.room, b.client)
}

func (b *baseSession) leave() {
	b.hub.Leave(b.room, b.client)
	b.client.close()
}

func (b *baseSession) send(kind messageKind, fields map[string]any) {
	data, err := encodeMessage(kind, fields)
	if err != nil {
		b.logger.Error("encode message", "kind", kind, "conn_id", b.client.id, "error", err)
		return
	}
	b.client.enqueue(data)
}

func (b *baseSession) sendError(message string) {
	b.client.enqueue(encodeError(message))
}

// fail handles a storage fault: log it and answer with a generic error
// frame instead of tearing the connection down.
func (b *baseSession) fail(op string, err error) {
	b.logger.Error(op, "conn_id", b.client.id, "error", err)
	b.sendError("internal error")
}

func (b *baseSession) onDisconnect() {
	b.leave()
}
