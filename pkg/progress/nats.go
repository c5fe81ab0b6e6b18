package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/evolution"
)

// DefaultSubject is the subject progress events are published on.
const DefaultSubject = "policyevo.progress"

// Event is the JSON payload of a published progress message.
type Event struct {
	Run            string    `json:"run"`
	Generation     int       `json:"generation"`
	Final          bool      `json:"final"`
	Temperature    float64   `json:"temperature"`
	MutationCount  int       `json:"mutationCount"`
	PopulationSize int       `json:"populationSize"`
	EliteWidth     int       `json:"eliteWidth"`
	Tiers          int       `json:"tiers"`
	BestUtility1   float64   `json:"bestUtility1"`
	MeanUtility1   float64   `json:"meanUtility1"`
	BestUtility2   float64   `json:"bestUtility2"`
	MeanUtility2   float64   `json:"meanUtility2"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher is the subset of *nats.Conn used to emit events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*natsgo.Conn)(nil)

// Connect dials a NATS server with reconnects enabled.
func Connect(ctx context.Context, url, name string) (*natsgo.Conn, error) {
	logger := klog.FromContext(ctx).WithValues("url", url)
	nc, err := natsgo.Connect(url,
		natsgo.Name(name),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error(err, "NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", "connectedUrl", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NATSObserver publishes a progress Event per ranked generation. Publishing
// is best effort: failures are logged and never stop the run.
type NATSObserver struct {
	pub     Publisher
	subject string
	run     string
	now     func() time.Time
}

var _ evolution.Observer = (*NATSObserver)(nil)

// NewNATSObserver returns an observer publishing events for run on subject.
// An empty subject selects DefaultSubject.
func NewNATSObserver(pub Publisher, subject, run string) *NATSObserver {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSObserver{pub: pub, subject: subject, run: run, now: time.Now}
}

func (o *NATSObserver) ObserveGeneration(ctx context.Context, stats evolution.GenerationStats) {
	event := Event{
		Run:            o.run,
		Generation:     stats.Generation,
		Final:          stats.Final,
		Temperature:    stats.Temperature,
		MutationCount:  stats.MutationCount,
		PopulationSize: stats.PopulationSize,
		EliteWidth:     stats.EliteWidth,
		Tiers:          stats.Tiers,
		BestUtility1:   stats.BestUtility1,
		MeanUtility1:   stats.MeanUtility1,
		BestUtility2:   stats.BestUtility2,
		MeanUtility2:   stats.MeanUtility2,
		Timestamp:      o.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		klog.FromContext(ctx).Error(err, "Failed to encode progress event", "generation", stats.Generation)
		return
	}
	if err := o.pub.Publish(o.subject, payload); err != nil {
		klog.FromContext(ctx).V(2).Info("Failed to publish progress event", "subject", o.subject, "err", err)
	}
}
