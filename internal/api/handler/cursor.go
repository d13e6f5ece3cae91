package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/quantum-tracker/internal/api/storage"
	"github.com/google/uuid"
)

// DecodeTransitionCursor parses a base64 "observedAtNano|eventID" cursor.
// An empty string means the first page.
func DecodeTransitionCursor(cursorStr string) (*storage.TransitionCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	observedPart, eventID, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}

	var observedAt int64
	if _, err := fmt.Sscanf(observedPart, "%d", &observedAt); err != nil {
		return nil, fmt.Errorf("invalid observedAt in cursor: %w", err)
	}

	if _, err := uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("invalid event id in cursor: %w", err)
	}

	return &storage.TransitionCursor{
		ObservedAt: time.Unix(0, observedAt).UTC(),
		EventID:    eventID,
	}, nil
}

func EncodeTransitionCursor(cursor *storage.TransitionCursor) string {
	cs := fmt.Sprintf("%d|%s", cursor.ObservedAt.UnixNano(), cursor.EventID)
	return base64.URLEncoding.EncodeToString([]byte(cs))
}
