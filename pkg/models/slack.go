package models

import "strconv"

// KnownMessageSubtypes lists the Slack meta-message subtypes that show up in
// exports. The loader skips any record carrying a subtype field regardless of
// its value; this set exists for documentation and validation, not branching.
var KnownMessageSubtypes = map[string]struct{}{
	"bot_message":       {}, // A message was posted by an app or integration
	"me_message":        {}, // A message was sent with the /me slash command
	"message_changed":   {}, // A message was changed
	"message_deleted":   {}, // A message was deleted
	"channel_join":      {}, // A member joined a channel
	"channel_leave":     {}, // A member left a channel
	"channel_topic":     {}, // A channel topic was updated
	"channel_purpose":   {}, // A channel purpose was updated
	"channel_name":      {}, // A channel was renamed
	"channel_archive":   {}, // A channel was archived
	"channel_unarchive": {}, // A channel was unarchived
	"group_join":        {}, // A member joined a group
	"group_leave":       {}, // A member left a group
	"group_topic":       {}, // A group topic was updated
	"group_purpose":     {}, // A group purpose was updated
	"group_name":        {}, // A group was renamed
	"group_archive":     {}, // A group was archived
	"group_unarchive":   {}, // A group was unarchived
	"file_share":        {}, // A file was shared into a channel
	"file_reply":        {}, // A reply was added to a file
	"file_mention":      {}, // A file was mentioned in a channel
	"pinned_item":       {}, // An item was pinned in a channel
	"unpinned_item":     {}, // An item was unpinned from a channel
}

// Message is a single content message from a Slack export. TS is Slack's
// string-encoded decimal seconds since epoch (e.g. "1599934232.150700") and
// is the sole sort key. ThreadTS is empty for messages outside any thread.
type Message struct {
	Text     string
	User     string
	TS       string
	ThreadTS string
}

// SortKey returns the timestamp as a number so ordering is numeric, never
// lexicographic. An unparsable timestamp sorts to zero; the renderer rejects
// it later with a proper error.
func (m Message) SortKey() float64 {
	ts, err := strconv.ParseFloat(m.TS, 64)
	if err != nil {
		return 0
	}
	return ts
}

// Thread is a head message plus its replies. ID is the head's ThreadTS, which
// for a thread head equals its own TS. Replies stay in the order they were
// appended during assembly.
type Thread struct {
	Message
	ID      string
	Replies []Message
}

// AddReply appends a reply in encounter order.
func (t *Thread) AddReply(m Message) {
	t.Replies = append(t.Replies, m)
}

// TimelineEntry is one slot in a channel's merged timeline: either a
// standalone message or a whole thread. Exactly one field is non-nil.
type TimelineEntry struct {
	Message *Message
	Thread  *Thread
}

// SortKey returns the representative timestamp: the message's own for a
// standalone entry, the head's for a thread.
func (e TimelineEntry) SortKey() float64 {
	if e.Thread != nil {
		return e.Thread.SortKey()
	}
	return e.Message.SortKey()
}

// User is one entry of the export's user directory.
type User struct {
	ID                 string
	Name               string
	RealName           string
	RealNameNormalized string
	Initials           string
}

// Channel holds everything derived from one channel directory: the raw
// message stream, the assembled threads in first-seen order, and the merged
// chronological timeline of standalone messages and threads.
type Channel struct {
	Name     string
	Messages []Message
	Threads  []*Thread
	Timeline []TimelineEntry
}
