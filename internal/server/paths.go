package server

import (
	"strconv"
	"strings"
)

func isLobbySocketPath(path string) bool {
	return strings.Trim(path, "/") == "ws/game-lobby"
}

func parseGameSocketPath(path string) (uint, bool) {
	const prefix = "/ws/game/"
	if !strings.HasPrefix(path, prefix) {
		return 0, false
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
