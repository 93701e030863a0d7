package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct{ n atomic.Int32 }

func (f *fakeTarget) Invalidate() { f.n.Add(1) }

type sess struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *sess) Claims() map[string][]int32 { return nil }
func (s *sess) MemberID() string           { return "" }
func (s *sess) GenerationID() int32        { return 0 }
func (s *sess) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	s.marked = append(s.marked, m.Offset)
	s.mu.Unlock()
}
func (s *sess) ResetOffset(_ string, _ int32, _ int64, _ string) {}
func (s *sess) MarkOffset(_ string, _ int32, _ int64, _ string)  {}
func (s *sess) Context() context.Context                         { return s.ctx }
func (s *sess) Commit()                                          {}

type claim struct {
	msgs chan *sarama.ConsumerMessage
	hwm  int64
}

func (c *claim) Topic() string                            { return "station-catalog" }
func (c *claim) Partition() int32                         { return 0 }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return c.hwm }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

func eventBytes(t *testing.T, ev Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestEventValidate(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"upsert", Event{Version: 1, Op: OpUpsert, StationIDs: []string{"7"}, TS: now}, true},
		{"delete", Event{Version: 1, Op: OpDelete, StationIDs: []string{"7", "8"}, TS: now}, true},
		{"reload without ids", Event{Version: 1, Op: OpReload, TS: now}, true},
		{"bad version", Event{Version: 2, Op: OpReload, TS: now}, false},
		{"bad op", Event{Version: 1, Op: "insert", TS: now}, false},
		{"upsert without ids", Event{Version: 1, Op: OpUpsert, TS: now}, false},
		{"blank id", Event{Version: 1, Op: OpDelete, StationIDs: []string{" "}, TS: now}, false},
		{"no ts", Event{Version: 1, Op: OpReload}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConsumeClaimInvalidatesAndMarksEverything(t *testing.T) {
	target := &fakeTarget{}
	c := NewConsumer(Config{Brokers: []string{"x"}, Topic: "station-catalog", GroupID: "g"}, target, zerolog.Nop())

	g := c.claimHandler()
	s := &sess{ctx: context.Background()}
	ch := make(chan *sarama.ConsumerMessage, 4)

	ts := time.Now().UTC()
	ch <- &sarama.ConsumerMessage{Offset: 10, Value: eventBytes(t, Event{Version: 1, Op: OpUpsert, StationIDs: []string{"7"}, TS: ts})}
	ch <- &sarama.ConsumerMessage{Offset: 11, Value: []byte("{not json")}
	ch <- &sarama.ConsumerMessage{Offset: 12, Value: eventBytes(t, Event{Version: 9, Op: OpReload, TS: ts})}
	ch <- &sarama.ConsumerMessage{Offset: 13, Value: eventBytes(t, Event{Version: 1, Op: OpReload, TS: ts})}
	close(ch)

	require.NoError(t, g.ConsumeClaim(s, &claim{msgs: ch, hwm: 20}))

	assert.Equal(t, []int64{10, 11, 12, 13}, s.marked)
	assert.EqualValues(t, 2, target.n.Load())
	assert.Equal(t, 6.0, testutil.ToFloat64(claimLag.WithLabelValues("0")))
}

func TestConsumeClaimStopsOnContextDone(t *testing.T) {
	c := NewConsumer(Config{}, &fakeTarget{}, zerolog.Nop())
	g := c.claimHandler()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.ConsumeClaim(&sess{ctx: ctx}, &claim{msgs: make(chan *sarama.ConsumerMessage)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartValidatesConfig(t *testing.T) {
	assert.Error(t, NewConsumer(Config{}, nil, zerolog.Nop()).Start(context.Background()))
	assert.Error(t, NewConsumer(Config{Topic: "t"}, &fakeTarget{}, zerolog.Nop()).Start(context.Background()))
}
