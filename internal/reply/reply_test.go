package reply_test

import (
	"context"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/DuoDuoJuZi/Myurujisu/internal/observe"
	"github.com/DuoDuoJuZi/Myurujisu/internal/reply"
	audiomock "github.com/DuoDuoJuZi/Myurujisu/pkg/audio/mock"
	ttsmock "github.com/DuoDuoJuZi/Myurujisu/pkg/provider/tts/mock"
)

func newPlayer(out *audiomock.Player, tts *ttsmock.Provider) *reply.Player {
	return reply.NewPlayer(tts, out, reply.WithPick(func(n int) int { return 6 }))
}

func TestDeliverShortMessageSkipsFiller(t *testing.T) {
	t.Parallel()

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := newPlayer(out, tts)

	msg := strings.Repeat("a", 40)
	if err := p.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	events := out.Played()
	if len(events) != 1 {
		t.Fatalf("got %d playback events, want 1", len(events))
	}
	if events[0].Clip != "" || events[0].Bytes == nil {
		t.Errorf("event = %+v, want direct speech", events[0])
	}
	if spoken := tts.Spoken(); len(spoken) != 1 || spoken[0] != msg {
		t.Errorf("Spoken = %v, want [%q]", spoken, msg)
	}
}

func TestDeliverLongMessagePlaysFillerFirst(t *testing.T) {
	t.Parallel()

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := newPlayer(out, tts)

	msg := strings.Repeat("a", 41)
	if err := p.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	events := out.Played()
	if len(events) != 2 {
		t.Fatalf("got %d playback events, want filler then speech", len(events))
	}
	if events[0].Clip != "wait_7" {
		t.Errorf("filler clip = %q, want wait_7", events[0].Clip)
	}
	if events[1].Bytes == nil {
		t.Errorf("second event = %+v, want synthesized speech", events[1])
	}
}

func TestDeliverCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := newPlayer(out, tts)

	// 40 Han characters are 120 bytes but sit exactly at the threshold.
	msg := strings.Repeat("好", 40)
	if err := p.Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if events := out.Played(); len(events) != 1 {
		t.Fatalf("got %d playback events, want 1 (no filler at 40 chars)", len(events))
	}
}

func TestDeliverEmptyMessageIsNoOp(t *testing.T) {
	t.Parallel()

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := newPlayer(out, tts)

	if err := p.Deliver(context.Background(), ""); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(out.Played()) != 0 || len(tts.Spoken()) != 0 {
		t.Error("empty message must produce no side effects")
	}
}

func TestSayRecordsSynthesisLatency(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := reply.NewPlayer(tts, out, reply.WithMetrics(metrics))

	if err := p.Say(context.Background(), "你好"); err != nil {
		t.Fatalf("Say: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var found *metricdata.Metrics
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == "muelsyse.tts.duration" {
				found = &sm.Metrics[i]
			}
		}
	}
	if found == nil {
		t.Fatal("muelsyse.tts.duration not recorded")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Fatalf("data points = %+v, want one observation", hist.DataPoints)
	}
}

func TestSayNeverPlaysFiller(t *testing.T) {
	t.Parallel()

	out := &audiomock.Player{}
	tts := &ttsmock.Provider{Audio: []byte("wav")}
	p := newPlayer(out, tts)

	if err := p.Say(context.Background(), strings.Repeat("a", 200)); err != nil {
		t.Fatalf("Say: %v", err)
	}
	events := out.Played()
	if len(events) != 1 || events[0].Clip != "" {
		t.Errorf("events = %+v, want direct speech only", events)
	}
}
