package engine

import "github.com/google/uuid"

// generateID mints ids for messages created on this side of the socket.
func generateID() string {
	return uuid.NewString()
}
