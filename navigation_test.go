package ktxclient

import (
	"context"
	"testing"
)

func TestWithIdentityAttachesSelector(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedSession(t, "amy", "token-amy", "student", true)
	ctx := context.Background()

	cases := []struct {
		href string
		want string
	}{
		{"/student/student.html", "/student/student.html?u=amy"},
		{"/reports/list.html?page=2", "/reports/list.html?page=2&u=amy"},
		{"/reports/list.html?u=bob", "/reports/list.html?u=amy"},
		{"/common/help.html#faq", "/common/help.html?u=amy#faq"},
	}
	for _, tc := range cases {
		if got := env.client.WithIdentity(ctx, tc.href); got != tc.want {
			t.Errorf("WithIdentity(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}

func TestWithIdentityNoActiveIdentity(t *testing.T) {
	env := newTestEnv(t, nil)

	href := "/student/student.html?page=2"
	if got := env.client.WithIdentity(context.Background(), href); got != href {
		t.Fatalf("href must pass through unchanged: %q", got)
	}
}

func TestWithIdentityHonorsSelector(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedSession(t, "amy", "token-amy", "student", true)
	env.seedSession(t, "bob", "token-bob", "student", false)

	ctx := WithIdentitySelector(context.Background(), "bob")
	if got := env.client.WithIdentity(ctx, "/x.html"); got != "/x.html?u=bob" {
		t.Fatalf("selector identity should propagate: %q", got)
	}
}

func TestRewriteLinksOptInOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedSession(t, "amy", "token-amy", "student", true)

	links := []Link{
		{Href: "/reports/new.html", KeepIdentity: true},
		{Href: "https://example.com/docs"},
		{Href: "/common/login.html"},
	}
	got := env.client.RewriteLinks(context.Background(), links)

	want := []string{
		"/reports/new.html?u=amy",
		"https://example.com/docs",
		"/common/login.html",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d: %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveAsset(t *testing.T) {
	env := newTestEnv(t, nil)
	base := env.server.URL

	cases := []struct {
		raw  string
		want string
	}{
		{"/uploads/abc123.png", base + "/uploads/abc123.png"},
		{"uploads/abc123.png", base + "/uploads/abc123.png"},
		{"https://cdn.example.com/x.png", "https://cdn.example.com/x.png"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := env.client.ResolveAsset(tc.raw); got != tc.want {
			t.Errorf("ResolveAsset(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSelectorFromURL(t *testing.T) {
	env := newTestEnv(t, nil)

	if got := env.client.SelectorFromURL("/student/student.html?u=amy&page=1"); got != "amy" {
		t.Fatalf("got %q", got)
	}
	if got := env.client.SelectorFromURL("/student/student.html"); got != "" {
		t.Fatalf("absent selector: %q", got)
	}
	if got := env.client.SelectorFromURL("://bad"); got != "" {
		t.Fatalf("unparseable URL: %q", got)
	}
}
