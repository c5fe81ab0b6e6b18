package progress

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/ktesting"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/metrics"
)

type message struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message{subject: subject, data: data})
	return nil
}

func TestNATSObserver(t *testing.T) {
	_, ctx := ktesting.NewTestContext(t)
	pub := &fakePublisher{}
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	o := NewNATSObserver(pub, "", "run-1")
	o.now = func() time.Time { return stamp }
	o.ObserveGeneration(ctx, evolution.GenerationStats{
		Generation:     3,
		Temperature:    0.5,
		MutationCount:  10,
		PopulationSize: 100,
		EliteWidth:     4,
		Tiers:          2,
		BestUtility1:   12,
		MeanUtility1:   6,
		BestUtility2:   -1,
		MeanUtility2:   -3,
		Final:          true,
	})

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if pub.messages[0].subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", pub.messages[0].subject, DefaultSubject)
	}
	var got Event
	if err := json.Unmarshal(pub.messages[0].data, &got); err != nil {
		t.Fatalf("payload is not an Event: %v", err)
	}
	want := Event{
		Run:            "run-1",
		Generation:     3,
		Final:          true,
		Temperature:    0.5,
		MutationCount:  10,
		PopulationSize: 100,
		EliteWidth:     4,
		Tiers:          2,
		BestUtility1:   12,
		MeanUtility1:   6,
		BestUtility2:   -1,
		MeanUtility2:   -3,
		Timestamp:      stamp,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected event (-want +got):\n%s", diff)
	}
}

func TestNATSObserverIgnoresPublishErrors(t *testing.T) {
	_, ctx := ktesting.NewTestContext(t)
	pub := &fakePublisher{err: errors.New("connection closed")}
	o := NewNATSObserver(pub, "custom.subject", "run-2")
	o.ObserveGeneration(ctx, evolution.GenerationStats{Generation: 1})
	if o.subject != "custom.subject" {
		t.Errorf("subject = %q, want custom.subject", o.subject)
	}
}

func TestMetricsObserver(t *testing.T) {
	_, ctx := ktesting.NewTestContext(t)
	before := testutil.ToFloat64(metrics.GenerationsTotal)

	MetricsObserver{}.ObserveGeneration(ctx, evolution.GenerationStats{
		Temperature:  0.25,
		EliteWidth:   7,
		BestUtility1: 3,
		BestUtility2: 9,
	})

	if got := testutil.ToFloat64(metrics.GenerationsTotal); got != before+1 {
		t.Errorf("generations_total = %v, want %v", got, before+1)
	}
	for name, tc := range map[string]struct{ got, want float64 }{
		"elite_width":    {testutil.ToFloat64(metrics.EliteWidth), 7},
		"temperature":    {testutil.ToFloat64(metrics.Temperature), 0.25},
		"best_utility 1": {testutil.ToFloat64(metrics.BestUtility.WithLabelValues("1")), 3},
		"best_utility 2": {testutil.ToFloat64(metrics.BestUtility.WithLabelValues("2")), 9},
	} {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", name, tc.got, tc.want)
		}
	}
}

func TestLogObserver(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		want      int
	}{
		{name: "only final at default verbosity", verbosity: 0, want: 1},
		// Generations 0, 5 and 10 plus the final one.
		{name: "sampled at high verbosity", verbosity: 2, want: 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger := ktesting.NewLogger(t, ktesting.NewConfig(ktesting.Verbosity(tc.verbosity), ktesting.BufferLogs(true)))
			ctx := klog.NewContext(context.Background(), logger)

			o := LogObserver{Verbosity: 2, Every: 5}
			for gen := 0; gen < 12; gen++ {
				o.ObserveGeneration(ctx, evolution.GenerationStats{Generation: gen, Final: gen == 11})
			}

			out := logger.GetSink().(ktesting.Underlier).GetBuffer().String()
			if got := strings.Count(out, "Generation ranked"); got != tc.want {
				t.Errorf("logged %d lines, want %d:\n%s", got, tc.want, out)
			}
		})
	}
}
