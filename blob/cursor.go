package blob

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// List cursors are the id of the last meeting handed to the caller,
// base64-wrapped so they stay opaque on the wire.

func meetingIDToCursor(id uuid.UUID) string {
	return base64.StdEncoding.EncodeToString([]byte(id.String()))
}

func cursorToMeetingID(cursor string) (uuid.UUID, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to b64 decode: %w", err)
	}

	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("cursor does not name a meeting id: %w", err)
	}
	return id, nil
}
