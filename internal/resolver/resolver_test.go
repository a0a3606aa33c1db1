package resolver

import (
	"testing"

	"sortdl/internal/rules"
)

func defaultSnapshot() rules.Snapshot {
	return rules.Snapshot{
		Sites:      rules.DefaultSiteRules(),
		Categories: rules.DefaultCategories(),
		Declined:   rules.Declined{},
	}
}

func TestResolveExactSiteRule(t *testing.T) {
	d := Resolve(defaultSnapshot(), "dafont.com", "zip")
	if !d.Matched || d.Folder != "Fonts" {
		t.Fatalf("got %+v want Fonts", d)
	}
	if d.MatchedWebsite != "dafont.com" {
		t.Fatalf("MatchedWebsite=%q", d.MatchedWebsite)
	}
}

func TestResolveAncestorMatch(t *testing.T) {
	d := Resolve(defaultSnapshot(), "sub.dafont.com", "zip")
	if !d.Matched || d.Folder != "Fonts" {
		t.Fatalf("got %+v want Fonts", d)
	}
	// the rule key, not the full website, is recorded
	if d.MatchedWebsite != "dafont.com" {
		t.Fatalf("MatchedWebsite=%q want dafont.com", d.MatchedWebsite)
	}
}

func TestResolveExactBeatsAncestor(t *testing.T) {
	snap := defaultSnapshot()
	snap.Sites.Set("sub.dafont.com", "zip", "SubFonts")
	d := Resolve(snap, "sub.dafont.com", "zip")
	if d.Folder != "SubFonts" || d.MatchedWebsite != "sub.dafont.com" {
		t.Fatalf("got %+v", d)
	}
}

func TestResolveSiteRuleBeatsCategory(t *testing.T) {
	// zip is in the Archives category, but the site rule wins
	d := Resolve(defaultSnapshot(), "dafont.com", "zip")
	if d.Folder != "Fonts" {
		t.Fatalf("got %+v want Fonts", d)
	}
}

func TestResolveCategoryFallback(t *testing.T) {
	d := Resolve(defaultSnapshot(), "example.org", "mp3")
	if !d.Matched || d.Folder != "Audio" {
		t.Fatalf("got %+v want Audio", d)
	}
	if d.MatchedWebsite != "" {
		t.Fatalf("category match should not record a website, got %q", d.MatchedWebsite)
	}
}

func TestResolveNoRoute(t *testing.T) {
	d := Resolve(defaultSnapshot(), "example.org", "xyz")
	if d.Matched {
		t.Fatalf("expected no route, got %+v", d)
	}
}

func TestResolveEmptyWebsiteStillUsesCategories(t *testing.T) {
	d := Resolve(defaultSnapshot(), "", "pdf")
	if !d.Matched || d.Folder != "Documents" {
		t.Fatalf("got %+v want Documents", d)
	}
}

func TestResolveEmptyExtension(t *testing.T) {
	if d := Resolve(defaultSnapshot(), "dafont.com", ""); d.Matched {
		t.Fatalf("expected no route for empty extension, got %+v", d)
	}
}

func TestAncestorLongestSuffixWins(t *testing.T) {
	snap := rules.Snapshot{Sites: rules.SiteRules{
		"b.com":   {"zip": "Short"},
		"a.b.com": {"zip": "Long"},
	}}
	d := Resolve(snap, "x.a.b.com", "zip")
	if d.Folder != "Long" || d.MatchedWebsite != "a.b.com" {
		t.Fatalf("got %+v want Long/a.b.com", d)
	}
}

func TestAncestorMatchDeterministic(t *testing.T) {
	snap := rules.Snapshot{Sites: rules.SiteRules{
		"aa.com": {"zip": "A"},
		"bb.com": {"zip": "B"},
	}}
	// Only one key actually suffixes the website; repeated runs must agree.
	for i := 0; i < 20; i++ {
		d := Resolve(snap, "cdn.bb.com", "zip")
		if d.Folder != "B" {
			t.Fatalf("run %d: got %+v", i, d)
		}
	}
}

func TestTargetPath(t *testing.T) {
	got := TargetPath("Sorted", "Fonts", "cool.zip")
	if got != "Sorted/Fonts/cool.zip" {
		t.Fatalf("TargetPath=%q", got)
	}
}
