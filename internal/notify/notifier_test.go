package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vivirisk/quotewatch/internal/domain"
)

type captureSender struct {
	name string
	sent []Digest
	err  error
}

func (c *captureSender) Name() string { return c.name }

func (c *captureSender) Send(_ context.Context, d Digest) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, d)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func alert(sev domain.Severity, title string) domain.Alert {
	return domain.Alert{
		ID:       "id-" + title,
		Category: domain.CatStale,
		Severity: sev,
		Asset:    "BTC",
		Title:    title,
	}
}

func TestDispatchOnlyCritical(t *testing.T) {
	s := &captureSender{name: "slack"}
	n := NewNotifier([]Sender{s}, nil, Options{OnlyCritical: true}, testLogger())

	d := Digest{Env: "prod", Alerts: []domain.Alert{
		alert(domain.SevCritical, "a"),
		alert(domain.SevWarning, "b"),
	}}
	if err := n.Dispatch(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 1 || len(s.sent[0].Alerts) != 1 || s.sent[0].Alerts[0].Title != "a" {
		t.Fatalf("sent = %+v", s.sent)
	}
}

func TestDispatchSkipsEmptyDigest(t *testing.T) {
	s := &captureSender{name: "slack"}
	n := NewNotifier([]Sender{s}, nil, Options{OnlyCritical: true}, testLogger())

	d := Digest{Env: "prod", Alerts: []domain.Alert{alert(domain.SevWarning, "w")}}
	if err := n.Dispatch(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 0 {
		t.Fatalf("sent = %+v", s.sent)
	}
}

func TestDispatchCooldownSuppressesRepeats(t *testing.T) {
	s := &captureSender{name: "slack"}
	n := NewNotifier([]Sender{s}, NewMemoryCooldown(time.Hour), Options{}, testLogger())
	ctx := context.Background()

	d := Digest{Env: "prod", Alerts: []domain.Alert{alert(domain.SevCritical, "a")}}
	if err := n.Dispatch(ctx, d); err != nil {
		t.Fatal(err)
	}
	if err := n.Dispatch(ctx, d); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("sent %d digests, want 1", len(s.sent))
	}
}

func TestDispatchDryRunSendsNothing(t *testing.T) {
	s := &captureSender{name: "slack"}
	n := NewNotifier([]Sender{s}, nil, Options{DryRun: true}, testLogger())

	d := Digest{Env: "prod", Alerts: []domain.Alert{alert(domain.SevCritical, "a")}}
	if err := n.Dispatch(context.Background(), d); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 0 {
		t.Fatalf("dry run delivered %d digests", len(s.sent))
	}
}

func TestDispatchCollectsSenderFailures(t *testing.T) {
	bad := &captureSender{name: "slack", err: errors.New("webhook 410")}
	good := &captureSender{name: "telegram"}
	n := NewNotifier([]Sender{bad, good}, nil, Options{}, testLogger())

	d := Digest{Env: "prod", Alerts: []domain.Alert{alert(domain.SevCritical, "a")}}
	err := n.Dispatch(context.Background(), d)
	if err == nil {
		t.Fatal("expected an aggregate error")
	}
	// The healthy channel still got the digest.
	if len(good.sent) != 1 {
		t.Fatalf("telegram sent %d, want 1", len(good.sent))
	}
}

func TestMemoryCooldownWindow(t *testing.T) {
	c := NewMemoryCooldown(10 * time.Millisecond)
	ctx := context.Background()

	if ok, _ := c.Allow(ctx, "k"); !ok {
		t.Fatal("first claim must pass")
	}
	if ok, _ := c.Allow(ctx, "k"); ok {
		t.Fatal("second claim inside the window must fail")
	}
	time.Sleep(15 * time.Millisecond)
	if ok, _ := c.Allow(ctx, "k"); !ok {
		t.Fatal("claim after expiry must pass")
	}
}
