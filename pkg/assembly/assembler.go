package assembly

import (
	"fmt"
	"sort"

	"github.com/boom-roasted/slack-export-to-md/pkg/models"
)

// NewThread initializes a thread from its head message. The head must carry a
// thread timestamp; constructing a thread from a non-threaded message is a
// programming error, not a recoverable record problem.
func NewThread(m models.Message) (*models.Thread, error) {
	if m.ThreadTS == "" {
		return nil, fmt.Errorf("message must have thread_ts to be initialized to a thread (ts %s)", m.TS)
	}
	return &models.Thread{Message: m, ID: m.ThreadTS}, nil
}

// threadSet is an insertion-ordered id → Thread mapping. Go map iteration
// order is randomized, so first-seen order is kept in a separate slice.
type threadSet struct {
	order []*models.Thread
	index map[string]*models.Thread
}

func newThreadSet() *threadSet {
	return &threadSet{index: make(map[string]*models.Thread)}
}

func (s *threadSet) get(id string) (*models.Thread, bool) {
	t, ok := s.index[id]
	return t, ok
}

func (s *threadSet) add(t *models.Thread) {
	s.order = append(s.order, t)
	s.index[t.ID] = t
}

// Assemble partitions a flat message stream into standalone messages and
// threads and merges them into one chronological timeline. The input order is
// whatever the loaders produced; only the final merge sorts, and it sorts
// stably so equal timestamps keep their relative input order.
func Assemble(name string, messages []models.Message) (*models.Channel, error) {
	threads, err := makeThreads(messages)
	if err != nil {
		return nil, err
	}

	return &models.Channel{
		Name:     name,
		Messages: messages,
		Threads:  threads,
		Timeline: makeTimeline(messages, threads),
	}, nil
}

// makeThreads groups threaded messages under their head in a single pass.
// The first message seen for a thread id becomes the head; every later
// message with that id is appended as a reply. That includes a re-encountered
// head message, which ends up as a reply to itself; existing archives rely on
// that exact shape, so it is kept.
func makeThreads(messages []models.Message) ([]*models.Thread, error) {
	set := newThreadSet()

	for _, m := range messages {
		if m.ThreadTS == "" {
			continue
		}

		if t, ok := set.get(m.ThreadTS); ok {
			t.AddReply(m)
			continue
		}

		t, err := NewThread(m)
		if err != nil {
			return nil, err
		}
		set.add(t)
	}

	return set.order, nil
}

// makeTimeline merges standalone messages with whole threads and orders the
// result by representative timestamp.
func makeTimeline(messages []models.Message, threads []*models.Thread) []models.TimelineEntry {
	timeline := make([]models.TimelineEntry, 0, len(messages)+len(threads))

	for i := range messages {
		if messages[i].ThreadTS == "" {
			timeline = append(timeline, models.TimelineEntry{Message: &messages[i]})
		}
	}
	for _, t := range threads {
		timeline = append(timeline, models.TimelineEntry{Thread: t})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].SortKey() < timeline[j].SortKey()
	})

	return timeline
}
