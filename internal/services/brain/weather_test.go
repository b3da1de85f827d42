package brain

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeWeatherClient scripts successive Current results.
type fakeWeatherClient struct {
	calls int
	obs   Observation
	err   error
}

func (f *fakeWeatherClient) Current(_ context.Context) (Observation, error) {
	f.calls++
	if f.err != nil {
		return Observation{}, f.err
	}
	return f.obs, nil
}

func TestWeatherProvider_FirstCallFetches(t *testing.T) {
	fc := &fakeWeatherClient{obs: Observation{Condition: "Clear", Temp: 31, Humidity: 65}}
	p := NewWeatherProvider(fc)

	now := time.Unix(1000, 0)
	snap := p.Context(context.Background(), now)
	if fc.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fc.calls)
	}
	if snap.Condition != "Clear" || snap.OutsideTemp != 31 || snap.OutsideHumidity != 65 {
		t.Errorf("snapshot = %+v, want fetched values", snap)
	}
	if !snap.FetchedAt.Equal(now) {
		t.Errorf("fetched_at = %v, want %v", snap.FetchedAt, now)
	}
}

func TestWeatherProvider_ThrottlesWithinWindow(t *testing.T) {
	fc := &fakeWeatherClient{obs: Observation{Condition: "Clear", Temp: 31, Humidity: 65}}
	p := NewWeatherProvider(fc)

	t0 := time.Unix(1000, 0)
	p.Context(context.Background(), t0)
	p.Context(context.Background(), t0.Add(1*time.Second))
	if fc.calls != 1 {
		t.Errorf("fetch calls after 1s = %d, want 1 (throttled)", fc.calls)
	}

	p.Context(context.Background(), t0.Add(601*time.Second))
	if fc.calls != 2 {
		t.Errorf("fetch calls after 601s = %d, want 2", fc.calls)
	}
}

func TestWeatherProvider_FailureDegradesSilently(t *testing.T) {
	fc := &fakeWeatherClient{obs: Observation{Condition: "Clear", Temp: 31, Humidity: 65}}
	p := NewWeatherProvider(fc)

	t0 := time.Unix(1000, 0)
	p.Context(context.Background(), t0)

	fc.err = errors.New("connection refused")
	t1 := t0.Add(700 * time.Second)
	snap := p.Context(context.Background(), t1)

	if snap.Condition != "Clouds" {
		t.Errorf("condition after failure = %q, want fallback %q", snap.Condition, "Clouds")
	}
	// Numeric values frozen at the pre-failure readings.
	if snap.OutsideTemp != 31 || snap.OutsideHumidity != 65 {
		t.Errorf("outside values after failure = %v/%v, want frozen 31/65", snap.OutsideTemp, snap.OutsideHumidity)
	}
	if !snap.FetchedAt.Equal(t1) {
		t.Errorf("fetched_at after failure = %v, want %v (throttle advances on failure too)", snap.FetchedAt, t1)
	}

	// Failure is throttled exactly like success.
	p.Context(context.Background(), t1.Add(time.Second))
	if fc.calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (no hot retry after failure)", fc.calls)
	}
}

func TestWeatherProvider_SeededDefaultsBeforeFirstFetch(t *testing.T) {
	p := NewWeatherProvider(&fakeWeatherClient{err: errors.New("down")})
	snap := p.Context(context.Background(), time.Unix(1000, 0))
	if snap.OutsideTemp != defaultOutsideTemp || snap.OutsideHumidity != defaultOutsideHumidity {
		t.Errorf("defaults = %v/%v, want %v/%v", snap.OutsideTemp, snap.OutsideHumidity, defaultOutsideTemp, defaultOutsideHumidity)
	}
	if snap.Condition != fallbackCondition {
		t.Errorf("condition = %q, want %q after failed first fetch", snap.Condition, fallbackCondition)
	}
}

func TestWeatherProvider_OnRefreshOutcome(t *testing.T) {
	fc := &fakeWeatherClient{obs: Observation{Condition: "Rain", Temp: 24, Humidity: 90}}
	p := NewWeatherProvider(fc)
	var outcomes []bool
	p.OnRefresh = func(ok bool) { outcomes = append(outcomes, ok) }

	t0 := time.Unix(1000, 0)
	p.Context(context.Background(), t0)
	fc.err = errors.New("boom")
	p.Context(context.Background(), t0.Add(601*time.Second))

	if len(outcomes) != 2 || !outcomes[0] || outcomes[1] {
		t.Errorf("refresh outcomes = %v, want [true false]", outcomes)
	}
}
