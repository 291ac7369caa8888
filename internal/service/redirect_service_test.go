package service

import (
	"strings"
	"testing"

	"commish/internal/domain"
)

func newRedirectFixture(t *testing.T) (*RedirectService, *RegistryService, *linkStoreStub, *campaignStoreStub) {
	t.Helper()
	links := newLinkStoreStub()
	campaigns := newCampaignStoreStub(activeCampaign("camp-1"))
	registry := NewRegistryService(links, campaigns)
	return NewRedirectService(registry, campaigns), registry, links, campaigns
}

func TestSanitizeRedirectURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://shop.example", "https://shop.example"},
		{"http://shop.example", "http://shop.example"},
		{"shop.example/product", "https://shop.example/product"},
		{"ftp://shop.example", "https://shop.example"},
		{"data://payload", "https://payload"},
	}
	for _, c := range cases {
		if got := SanitizeRedirectURL(c.in); got != c.want {
			t.Errorf("SanitizeRedirectURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	// Whatever comes in, the output scheme is always http(s).
	hostile := []string{"javascript://alert(1)", "vbscript://x", "file://etc/passwd", "weird"}
	for _, in := range hostile {
		got := SanitizeRedirectURL(in)
		if !strings.HasPrefix(strings.ToLower(got), "http") {
			t.Errorf("SanitizeRedirectURL(%q) = %q, scheme not forced to http(s)", in, got)
		}
	}
}

func TestAppendTrackingParam(t *testing.T) {
	if got := AppendTrackingParam("https://a.example/p", "JAS10"); got != "https://a.example/p?discount=JAS10" {
		t.Errorf("no-query append = %q", got)
	}
	if got := AppendTrackingParam("https://a.example/p?x=1", "JAS10"); got != "https://a.example/p?x=1&discount=JAS10" {
		t.Errorf("existing-query append = %q", got)
	}
	if got := AppendTrackingParam("https://a.example/p", "A&B=C"); got != "https://a.example/p?discount=A%26B%3DC" {
		t.Errorf("escaping = %q", got)
	}
}

func TestResolveHappyPath(t *testing.T) {
	svc, registry, links, _ := newRedirectFixture(t)
	link, _ := registry.RequestLink("camp-1", "creator-1", "Jasmine")
	registry.AssignLink(link.ID, "JAS10", "https://ignored.example", "")

	finalURL, resolved, err := svc.Resolve("jas10", "", "", "10.0.0.1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if finalURL != "https://glow.example/serum?discount=JAS10" {
		t.Errorf("final url = %q", finalURL)
	}
	if resolved.ID != link.ID {
		t.Errorf("resolved wrong link")
	}
	if links.links[link.ID].Clicks != 1 {
		t.Errorf("clicks = %d, want 1", links.links[link.ID].Clicks)
	}
	if len(links.clickLogs) != 1 {
		t.Errorf("click logs = %d, want 1", len(links.clickLogs))
	}
}

func TestResolveClickMonotonic(t *testing.T) {
	svc, registry, links, _ := newRedirectFixture(t)
	link, _ := registry.RequestLink("camp-1", "creator-1", "Jasmine")
	registry.AssignLink(link.ID, "JAS10", "https://x.example", "")

	for i := 0; i < 5; i++ {
		if _, _, err := svc.Resolve("JAS10", "", "", "10.0.0.1"); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if links.links[link.ID].Clicks != 5 {
		t.Errorf("clicks = %d, want 5", links.links[link.ID].Clicks)
	}
}

func TestResolveLegacyPair(t *testing.T) {
	svc, registry, _, _ := newRedirectFixture(t)
	link, _ := registry.RequestLink("camp-1", "creator-1", "Jasmine")
	registry.AssignLink(link.ID, "JAS10", "https://x.example", "")

	finalURL, _, err := svc.Resolve("", "creator-1", "Glow Beauty", "10.0.0.1")
	if err != nil {
		t.Fatalf("legacy resolve: %v", err)
	}
	if !strings.Contains(finalURL, "discount=JAS10") {
		t.Errorf("legacy final url = %q, missing tracking param", finalURL)
	}
}

func TestResolveDeadLinks(t *testing.T) {
	svc, registry, _, campaigns := newRedirectFixture(t)
	link, _ := registry.RequestLink("camp-1", "creator-1", "Jasmine")

	// Pending link: not resolvable.
	if _, _, err := svc.Resolve("NOPE", "", "", ""); err != domain.ErrNotFound {
		t.Fatalf("unknown code: got %v, want ErrNotFound", err)
	}
	registry.AssignLink(link.ID, "JAS10", "https://x.example", "")

	// Ended campaign kills the redirect even for an assigned code.
	campaigns.campaigns["camp-1"].Status = domain.CampaignEnded
	if _, _, err := svc.Resolve("JAS10", "", "", ""); err != domain.ErrNotFound {
		t.Fatalf("ended campaign: got %v, want ErrNotFound", err)
	}
}

func TestResolveMissingIdentifier(t *testing.T) {
	svc, _, _, _ := newRedirectFixture(t)
	if _, _, err := svc.Resolve("", "", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// A lone legacy creator id without the merchant half is also rejected.
	if _, _, err := svc.Resolve("", "creator-1", "", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for half a legacy pair, got %v", err)
	}
}
