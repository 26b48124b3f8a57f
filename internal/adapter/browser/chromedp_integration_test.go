//go:build integration

package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

const integrationDebugPort = "9339"

func TestCDPSourceReadsLiveBrowser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html><html><head><title>Docs</title></head><body>docs</body></html>`)
	}))
	defer srv.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("remote-debugging-port", integrationDebugPort),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(srv.URL+"/guide")); err != nil {
		t.Skipf("chrome not available: %v", err)
	}

	src := NewCDPSource("http://127.0.0.1:"+integrationDebugPort, 10*time.Second, slog.Default())
	got, err := src.ActiveTabURL(context.Background())
	if err != nil {
		t.Fatalf("ActiveTabURL: %v", err)
	}
	if got != srv.URL+"/guide" {
		t.Errorf("ActiveTabURL = %q, want %q", got, srv.URL+"/guide")
	}
}
