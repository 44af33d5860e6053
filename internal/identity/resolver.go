package identity

import (
	"strings"

	"github.com/google/uuid"

	"live-service/internal/auth"
	"live-service/internal/models"
)

// maxNameLength caps display names before they enter any event payload.
const maxNameLength = 50

// Resolve turns an authenticated caller (or nil) into a Participant.
// Pure function; safe to call repeatedly for the same request.
func Resolve(caller *auth.Caller, nameHint string) models.Participant {
	nameHint = strings.TrimSpace(nameHint)

	if caller == nil {
		name := nameHint
		if name == "" {
			name = "Guest"
		}
		return models.Participant{
			ID:    "guest-" + uuid.NewString(),
			Name:  truncate(name),
			Guest: true,
		}
	}

	name := firstNonEmpty(
		strings.TrimSpace(caller.Name),
		strings.TrimSpace(caller.Username),
		emailLocalPart(caller.Email),
		nameHint,
		"User",
	)
	return models.Participant{
		ID:       caller.ID,
		Name:     truncate(name),
		Avatar:   caller.Avatar,
		Username: caller.Username,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func emailLocalPart(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return strings.TrimSpace(local)
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxNameLength {
		return s
	}
	return string(runes[:maxNameLength])
}
