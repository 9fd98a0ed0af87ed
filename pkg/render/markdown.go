package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
)

// mentionPattern matches inline Slack user mentions like <@U01234ABC>.
var mentionPattern = regexp.MustCompile(`<@(U[A-Z0-9]+)>`)

// Renderer converts messages and threads to markdown. With a user directory
// it replaces user ids by initials everywhere; without one, raw ids pass
// through unchanged. Every id referenced by a message is expected to exist in
// the directory — an unknown id is an error, not a fallback.
type Renderer struct {
	users map[string]models.User
}

// NewRenderer creates a renderer. users may be nil to render raw ids.
func NewRenderer(users map[string]models.User) *Renderer {
	return &Renderer{users: users}
}

// Message renders one message as "**{name}:** {text} *[{utc}]*".
func (r *Renderer) Message(m models.Message) (string, error) {
	utc, err := formatTimestamp(m.TS)
	if err != nil {
		return "", err
	}

	name := m.User
	text := m.Text

	if r.users != nil {
		user, ok := r.users[m.User]
		if !ok {
			return "", fmt.Errorf("unknown user id %q", m.User)
		}
		name = user.Initials

		if text, err = r.replaceMentions(text); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("**%s:** %s *[%s]*", name, text, utc), nil
}

// Thread renders a thread as a heading for the head message, a Replies
// sub-heading, and each reply in the order it was collected.
func (r *Renderer) Thread(t *models.Thread) (string, error) {
	head, err := r.Message(t.Message)
	if err != nil {
		return "", err
	}

	replies := make([]string, len(t.Replies))
	for i, reply := range t.Replies {
		if replies[i], err = r.Message(reply); err != nil {
			return "", err
		}
	}

	return "## " + head + "\n\n" + "### Replies\n" + strings.Join(replies, "\n\n"), nil
}

// Entry renders a timeline entry according to its variant.
func (r *Renderer) Entry(e models.TimelineEntry) (string, error) {
	if e.Thread != nil {
		return r.Thread(e.Thread)
	}
	return r.Message(*e.Message)
}

// Channel renders a whole channel document: a title, then every timeline
// entry separated by blank lines, with a horizontal rule closing out each
// thread visually.
func (r *Renderer) Channel(c *models.Channel) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s channel, in markdown\n\n", c.Name)

	for _, entry := range c.Timeline {
		s, err := r.Entry(entry)
		if err != nil {
			return "", err
		}
		b.WriteString(s + "\n\n")
		if entry.Thread != nil {
			b.WriteString("---\n\n")
		}
	}

	return b.String(), nil
}

// replaceMentions rewrites every inline mention to the mentioned user's
// initials, bolded and prefixed with "@".
func (r *Renderer) replaceMentions(text string) (string, error) {
	var lookupErr error
	out := mentionPattern.ReplaceAllStringFunc(text, func(match string) string {
		id := mentionPattern.FindStringSubmatch(match)[1]
		user, ok := r.users[id]
		if !ok {
			if lookupErr == nil {
				lookupErr = fmt.Errorf("unknown user id %q", id)
			}
			return match
		}
		return fmt.Sprintf("**@%s**", user.Initials)
	})
	if lookupErr != nil {
		return "", lookupErr
	}
	return out, nil
}

// formatTimestamp renders a decimal seconds-since-epoch string as an absolute
// UTC date-time with second precision.
func formatTimestamp(ts string) (string, error) {
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	sec, frac := math.Modf(seconds)
	t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
	return t.Format("2006-01-02 15:04:05") + " UTC", nil
}
