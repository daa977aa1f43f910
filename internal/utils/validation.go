package utils

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID converts a hex id, returning false for malformed input.
func ParseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// SanitizeMessage trims whitespace and enforces the message length cap.
func SanitizeMessage(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > MaxMessageLength {
		return "", false
	}
	return content, true
}
