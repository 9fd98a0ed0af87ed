package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
)

// LoadUsers parses the export's user directory file into a lookup table keyed
// by user id. Unlike message loading, any malformed user record is fatal: a
// broken directory would corrupt name resolution for the whole export.
func LoadUsers(filename string) (map[string]models.User, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open user file: %w", err)
	}
	defer file.Close()

	return ParseUsers(file)
}

// ParseUsers parses user records from r into an id → User map.
func ParseUsers(r io.Reader) (map[string]models.User, error) {
	var records []map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode user directory: %w", err)
	}

	users := make(map[string]models.User, len(records))

	for _, record := range records {
		user, err := parseUser(record)
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}

	return users, nil
}

// parseUser builds a User from one raw directory record. It requires id,
// name, and a profile object carrying real_name and real_name_normalized.
func parseUser(record map[string]json.RawMessage) (models.User, error) {
	for _, field := range []string{"id", "name", "profile"} {
		if _, ok := record[field]; !ok {
			return models.User{}, fmt.Errorf("user definition does not contain necessary attribute: %s", field)
		}
	}

	var profile map[string]json.RawMessage
	if err := json.Unmarshal(record["profile"], &profile); err != nil {
		return models.User{}, fmt.Errorf("expected user profile to be an object: %w", err)
	}

	for _, field := range []string{"real_name", "real_name_normalized"} {
		if _, ok := profile[field]; !ok {
			return models.User{}, fmt.Errorf("user profile must contain a %q field", field)
		}
	}

	user := models.User{
		ID:                 coerceString(record["id"]),
		Name:               coerceString(record["name"]),
		RealName:           coerceString(profile["real_name"]),
		RealNameNormalized: coerceString(profile["real_name_normalized"]),
	}
	user.Initials = ComputeInitials(user.RealNameNormalized)

	return user, nil
}

// coerceString renders any JSON value as a string so that lookups behave
// uniformly even if an export encodes an id as a number.
func coerceString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// ComputeInitials derives a display abbreviation from a normalized real name:
// the first rune of each whitespace-separated token, dropping parenthetical
// annotations such as "(he/him)".
func ComputeInitials(realNameNormalized string) string {
	var b strings.Builder
	for _, part := range strings.Fields(realNameNormalized) {
		runes := []rune(part)
		if runes[0] == '(' {
			continue
		}
		b.WriteRune(runes[0])
	}
	return b.String()
}
