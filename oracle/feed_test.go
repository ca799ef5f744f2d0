package oracle

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticFeedServesPinnedPrice(t *testing.T) {
	feed := NewStaticFeed(big.NewInt(200000000000))
	price, err := feed.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("latest price: %v", err)
	}
	if price.Cmp(big.NewInt(200000000000)) != 0 {
		t.Fatalf("unexpected price: got %s", price)
	}

	feed.SetPrice(big.NewInt(190000000000))
	price, err = feed.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("latest price after update: %v", err)
	}
	if price.Cmp(big.NewInt(190000000000)) != 0 {
		t.Fatalf("unexpected updated price: got %s", price)
	}
}

func TestStaticFeedRejectsNonPositivePrice(t *testing.T) {
	feed := NewStaticFeed(big.NewInt(0))
	if _, err := feed.LatestPrice(context.Background()); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected invalid price, got %v", err)
	}
}

func TestStaticFeedReturnsCopy(t *testing.T) {
	feed := NewStaticFeed(big.NewInt(100))
	price, err := feed.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("latest price: %v", err)
	}
	price.SetInt64(-5)
	again, err := feed.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("latest price after caller mutation: %v", err)
	}
	if again.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("internal price mutated: got %s", again)
	}
}

func TestHTTPFeedParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price":"3000000000000"}`))
	}))
	defer srv.Close()

	feed, err := NewHTTPFeed(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}
	price, err := feed.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("latest price: %v", err)
	}
	if price.Cmp(big.NewInt(3000000000000)) != 0 {
		t.Fatalf("unexpected price: got %s", price)
	}
	if feed.LastObserved().IsZero() {
		t.Fatalf("expected observation timestamp to be recorded")
	}
}

func TestHTTPFeedRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
		{name: "empty price", status: http.StatusOK, body: `{"price":""}`},
		{name: "malformed json", status: http.StatusOK, body: `{"price":`},
		{name: "non numeric", status: http.StatusOK, body: `{"price":"abc"}`},
		{name: "negative", status: http.StatusOK, body: `{"price":"-1"}`, wantErr: ErrInvalidPrice},
		{name: "zero", status: http.StatusOK, body: `{"price":"0"}`, wantErr: ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			feed, err := NewHTTPFeed(srv.Client(), srv.URL)
			if err != nil {
				t.Fatalf("new feed: %v", err)
			}
			_, err = feed.LatestPrice(context.Background())
			if err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !feed.LastObserved().IsZero() {
				t.Fatalf("failed read must not update observation time")
			}
		})
	}
}

func TestNewHTTPFeedRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPFeed(nil, "  "); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
