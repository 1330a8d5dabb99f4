package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/field-reports/internal/config"
)

func TestRemoteClientHeaders(t *testing.T) {
	var gotLang, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newRemoteClient(&config.RemoteConfig{UserAgent: "FieldReports/1.0", Timeout: time.Second})
	if _, err := client.Get(t.Context(), server.URL+"/reverse"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotLang != "en" {
		t.Errorf("expected Accept-Language en, got %q", gotLang)
	}
	if gotUA != "FieldReports/1.0" {
		t.Errorf("expected User-Agent FieldReports/1.0, got %q", gotUA)
	}
}
