package utils

import "testing"

func TestNormalizeHost(t *testing.T) {
	host, err := NormalizeHost("https://Example.com/path?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "example.com" {
		t.Fatalf("unexpected host: %s", host)
	}

	host, err = NormalizeHost("scam.example.com/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "scam.example.com" {
		t.Fatalf("unexpected host without scheme: %s", host)
	}
}

func TestExtractURLs(t *testing.T) {
	urls := ExtractURLs("look at https://a.com and http://b.com/x now")
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}
	if urls := ExtractURLs("no links here"); len(urls) != 0 {
		t.Fatalf("expected no urls, got %v", urls)
	}
}
