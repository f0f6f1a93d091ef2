package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gen2brain/beeep"

	"stock-notifier/internal/config"
)

func TestDesktopNotify(t *testing.T) {
	d := NewDesktopNotifier(config.DesktopConfig{Enabled: true, Bell: true, Icon: "stock.png"})

	var gotTitle, gotMessage, gotIcon string
	d.popup = func(title, message, icon string) error {
		gotTitle, gotMessage, gotIcon = title, message, icon
		return nil
	}
	var beeps int
	var gotFreq float64
	d.beep = func(freq float64, duration int) error {
		beeps++
		gotFreq = freq
		return nil
	}

	if err := d.Notify(context.Background(), "MSFT", testSnap); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotTitle != "MSFT Stock Data (2024-03-01)" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotMessage != Message(testSnap) {
		t.Errorf("message = %q", gotMessage)
	}
	if gotIcon != "stock.png" {
		t.Errorf("icon = %q", gotIcon)
	}
	if beeps != 1 || gotFreq != beeep.DefaultFreq {
		t.Errorf("beeps = %d at %v Hz", beeps, gotFreq)
	}
}

func TestDesktopNotifyWithoutBell(t *testing.T) {
	d := NewDesktopNotifier(config.DesktopConfig{Enabled: true})
	d.popup = func(string, string, string) error { return nil }
	d.beep = func(float64, int) error {
		t.Error("bell rang while disabled")
		return nil
	}
	if err := d.Notify(context.Background(), "MSFT", testSnap); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
}

func TestDesktopNotifyErrors(t *testing.T) {
	d := NewDesktopNotifier(config.DesktopConfig{Enabled: true, Bell: true})
	d.beep = func(float64, int) error { return errors.New("no sound device") }

	errNoBus := errors.New("dbus: session bus not available")
	d.popup = func(string, string, string) error { return errNoBus }
	if err := d.Notify(context.Background(), "MSFT", testSnap); !errors.Is(err, errNoBus) {
		t.Errorf("error = %v, want wrapped popup error", err)
	}

	d.popup = func(string, string, string) error { return nil }
	if err := d.Notify(context.Background(), "MSFT", testSnap); err != nil {
		t.Errorf("bell failure should not fail the popup: %v", err)
	}
}

func TestDesktopNotifyTimesOut(t *testing.T) {
	d := NewDesktopNotifier(config.DesktopConfig{Enabled: true, Timeout: 50 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)
	d.popup = func(string, string, string) error {
		<-release
		return nil
	}

	start := time.Now()
	err := d.Notify(context.Background(), "MSFT", testSnap)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Notify waited past its timeout")
	}
}
