package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeProvider hands out tok-1, tok-2, ... and delegates listing to listFn.
type fakeProvider struct {
	mu           sync.Mutex
	ttl          int64
	acquireErr   error
	acquireCalls int
	listCalls    int
	listFn       func(call int, token string) ([]string, error)
}

func (p *fakeProvider) AcquireToken(_ context.Context, clientID, clientSecret string) (string, int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if clientID != "id" || clientSecret != "secret" {
		return "", 0, fmt.Errorf("unexpected credentials %s/%s", clientID, clientSecret)
	}
	p.acquireCalls++
	if p.acquireErr != nil {
		return "", 0, p.acquireErr
	}
	return fmt.Sprintf("tok-%d", p.acquireCalls), p.ttl, nil
}

func (p *fakeProvider) ListGenres(_ context.Context, token string) ([]string, error) {
	p.mu.Lock()
	p.listCalls++
	call := p.listCalls
	p.mu.Unlock()

	if p.listFn != nil {
		return p.listFn(call, token)
	}
	return []string{"rock", "pop"}, nil
}

func (p *fakeProvider) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquireCalls, p.listCalls
}

func newTestValidator(p *fakeProvider, clock *fakeClock) *Validator {
	cache := NewMemoryTokenCache().WithClock(clock.Now)
	return NewValidator(p, cache, Credentials{ClientID: "id", ClientSecret: "secret"}, time.Second).
		WithClock(clock.Now)
}

func TestValidatorIsValidGenre(t *testing.T) {
	ctx := context.Background()

	t.Run("Case Insensitive Membership", func(t *testing.T) {
		v := newTestValidator(&fakeProvider{ttl: 3600}, newFakeClock())

		for genre, want := range map[string]bool{"rock": true, "ROCK": true, " Pop ": true, "metal": false} {
			got, err := v.IsValidGenre(ctx, genre)
			if err != nil {
				t.Fatalf("genre %q: unexpected error %v", genre, err)
			}
			if got != want {
				t.Errorf("genre %q: expected %v, got %v", genre, want, got)
			}
		}
	})

	t.Run("Reuses Cached Token", func(t *testing.T) {
		p := &fakeProvider{ttl: 3600}
		v := newTestValidator(p, newFakeClock())

		for i := 0; i < 3; i++ {
			if _, err := v.IsValidGenre(ctx, "rock"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if acquires, lists := p.calls(); acquires != 1 || lists != 3 {
			t.Errorf("expected 1 acquire and 3 lists, got %d and %d", acquires, lists)
		}
	})

	t.Run("Refreshes After Expiry", func(t *testing.T) {
		p := &fakeProvider{ttl: 60}
		clock := newFakeClock()
		v := newTestValidator(p, clock)

		v.IsValidGenre(ctx, "rock")
		clock.Advance(60 * time.Second)
		v.IsValidGenre(ctx, "rock")

		if acquires, _ := p.calls(); acquires != 2 {
			t.Errorf("expected refresh after expiry, got %d acquires", acquires)
		}
	})

	t.Run("Single Forced Refresh On Rejection", func(t *testing.T) {
		p := &fakeProvider{ttl: 3600}
		p.listFn = func(call int, token string) ([]string, error) {
			if token == "tok-1" {
				return nil, fmt.Errorf("%w: 401", ErrProviderRejected)
			}
			return []string{"rock", "pop"}, nil
		}
		v := newTestValidator(p, newFakeClock())

		ok, err := v.IsValidGenre(ctx, "rock")
		if err != nil {
			t.Fatalf("expected success after forced refresh, got %v", err)
		}
		if !ok {
			t.Error("expected rock to be valid")
		}
		if acquires, lists := p.calls(); acquires != 2 || lists != 2 {
			t.Errorf("expected 2 acquires and 2 lists, got %d and %d", acquires, lists)
		}

		// the refreshed token is cached for the next call
		v.IsValidGenre(ctx, "pop")
		if acquires, _ := p.calls(); acquires != 2 {
			t.Errorf("expected refreshed token to be reused, got %d acquires", acquires)
		}
	})

	t.Run("Second Rejection Is Terminal", func(t *testing.T) {
		p := &fakeProvider{ttl: 3600}
		p.listFn = func(int, string) ([]string, error) {
			return nil, fmt.Errorf("%w: 401", ErrProviderRejected)
		}
		v := newTestValidator(p, newFakeClock())

		_, err := v.IsValidGenre(ctx, "rock")
		if !errors.Is(err, ErrValidationUnavailable) {
			t.Fatalf("expected ErrValidationUnavailable, got %v", err)
		}
		if !errors.Is(err, ErrProviderRejected) {
			t.Errorf("expected provider error to be wrapped, got %v", err)
		}
		if acquires, lists := p.calls(); acquires != 2 || lists != 2 {
			t.Errorf("expected exactly one retry, got %d acquires and %d lists", acquires, lists)
		}
	})

	t.Run("Unavailable Is Not Retried", func(t *testing.T) {
		p := &fakeProvider{ttl: 3600}
		p.listFn = func(int, string) ([]string, error) {
			return nil, fmt.Errorf("%w: connection refused", ErrProviderUnavailable)
		}
		v := newTestValidator(p, newFakeClock())

		_, err := v.IsValidGenre(ctx, "rock")
		if !errors.Is(err, ErrValidationUnavailable) || !errors.Is(err, ErrProviderUnavailable) {
			t.Fatalf("expected wrapped ErrProviderUnavailable, got %v", err)
		}
		if acquires, lists := p.calls(); acquires != 1 || lists != 1 {
			t.Errorf("expected no retry, got %d acquires and %d lists", acquires, lists)
		}
	})

	t.Run("Token Acquisition Fails", func(t *testing.T) {
		p := &fakeProvider{acquireErr: fmt.Errorf("%w: dial tcp", ErrProviderUnavailable)}
		v := newTestValidator(p, newFakeClock())

		_, err := v.IsValidGenre(ctx, "rock")
		if !errors.Is(err, ErrValidationUnavailable) {
			t.Fatalf("expected ErrValidationUnavailable, got %v", err)
		}
		if _, lists := p.calls(); lists != 0 {
			t.Errorf("expected no listing without a token, got %d", lists)
		}
	})

	t.Run("Concurrent Callers Share Token", func(t *testing.T) {
		p := &fakeProvider{ttl: 3600}
		v := newTestValidator(p, newFakeClock())

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := v.IsValidGenre(ctx, "rock"); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if acquires, lists := p.calls(); acquires != 1 || lists != 20 {
			t.Errorf("expected 1 acquire and 20 lists, got %d and %d", acquires, lists)
		}
	})
}

func TestValidatorAgainstHTTPProvider(t *testing.T) {
	var mu sync.Mutex
	issued := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		issued++
		n := issued
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, n)
	})
	mux.HandleFunc("/v1/browse/categories", func(w http.ResponseWriter, r *http.Request) {
		// the first token has lapsed on the provider side
		if r.Header.Get("Authorization") == "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"categories":{"items":[{"name":"Rock"},{"name":"Pop"}]}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL+"/api/token", srv.URL+"/v1", 50, 5*time.Second)
	v := NewValidator(client, NewMemoryTokenCache(), Credentials{ClientID: "id", ClientSecret: "secret"}, 5*time.Second)

	ok, err := v.IsValidGenre(context.Background(), "Rock")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !ok {
		t.Error("expected Rock to be valid")
	}
	mu.Lock()
	defer mu.Unlock()
	if issued != 2 {
		t.Errorf("expected 2 token exchanges, got %d", issued)
	}
}

func TestDisabledAcceptsEverything(t *testing.T) {
	ok, err := Disabled{}.IsValidGenre(context.Background(), "anything")
	if err != nil || !ok {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}
}
