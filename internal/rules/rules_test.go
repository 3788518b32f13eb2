package rules

import (
	"testing"
	"unicode/utf8"

	"bytemomo/remora/internal/domain"
)

func findByType(issues []domain.Issue, typ string) *domain.Issue {
	for i := range issues {
		if issues[i].Type == typ {
			return &issues[i]
		}
	}
	return nil
}

func runSet(t *testing.T, cat domain.Category, set []Rule, path, content string) []domain.Issue {
	t.Helper()
	var out []domain.Issue
	for _, check := range Checks(cat, set) {
		out = append(out, check(path, content)...)
	}
	for _, issue := range out {
		if err := issue.Validate(); err != nil {
			t.Fatalf("rule produced invalid issue: %v (%+v)", err, issue)
		}
	}
	return out
}

func TestSecurityRules(t *testing.T) {
	content := "const x = eval(input);\n" +
		"const url = 'http://example.com/api';\n" +
		"const apiKey = 'sk-112233445566';\n" +
		"node.textContent = safe;\n"

	issues := runSet(t, domain.CategorySecurity, SecurityRules(), "src/app.js", content)

	ev := findByType(issues, "eval-usage")
	if ev == nil {
		t.Fatal("expected eval-usage issue")
	}
	if ev.Line != 1 || ev.Severity != domain.SeverityHigh {
		t.Errorf("eval-usage wrong location/severity: %+v", ev)
	}
	if findByType(issues, "insecure-url") == nil {
		t.Error("expected insecure-url issue")
	}
	if findByType(issues, "hardcoded-secret") == nil {
		t.Error("expected hardcoded-secret issue")
	}
	if findByType(issues, "inner-html") != nil {
		t.Error("clean line flagged by inner-html")
	}
}

func TestRuleIssuesInSourceLineOrder(t *testing.T) {
	content := "eval(a);\nok();\neval(b);\n"
	check := SecurityRules()[0].Checker(domain.CategorySecurity)

	issues := check("a.js", content)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Line != 1 || issues[1].Line != 3 {
		t.Errorf("issues not in line order: %+v", issues)
	}
}

func TestAccessibilityAbsentGuard(t *testing.T) {
	content := `<img src="a.png">` + "\n" +
		`<img src="b.png" alt="logo">` + "\n"

	issues := runSet(t, domain.CategoryAccessibility, AccessibilityRules(), "page.html", content)

	missing := findByType(issues, "img-missing-alt")
	if missing == nil {
		t.Fatal("expected img-missing-alt for first line")
	}
	if missing.Line != 1 {
		t.Errorf("expected issue on line 1, got %d", missing.Line)
	}
	count := 0
	for _, issue := range issues {
		if issue.Type == "img-missing-alt" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("img with alt should not be flagged, got %d issues", count)
	}
}

func TestTestingPositiveSignal(t *testing.T) {
	content := "it('adds', () => {\n  expect(add(1, 2)).toBe(3);\n});\n"
	issues := runSet(t, domain.CategoryTesting, TestingRules(), "sum.test.js", content)

	pos := findByType(issues, "has-assertions")
	if pos == nil {
		t.Fatal("expected positive has-assertions issue")
	}
	if !pos.Positive || pos.Severity != domain.SeverityInfo {
		t.Errorf("positive signal misclassified: %+v", pos)
	}
}

func TestPerformanceRules(t *testing.T) {
	content := "const data = fs.readFileSync(p);\nconst copy = JSON.parse(JSON.stringify(obj));\n"
	issues := runSet(t, domain.CategoryPerformance, PerformanceRules(), "srv.js", content)

	if findByType(issues, "sync-fs-call") == nil {
		t.Error("expected sync-fs-call issue")
	}
	if findByType(issues, "json-deep-clone") == nil {
		t.Error("expected json-deep-clone issue")
	}
}

func TestContextTruncated(t *testing.T) {
	long := "eval(x); //"
	for len(long) < 500 {
		long += " padding padding"
	}
	check := SecurityRules()[0].Checker(domain.CategorySecurity)
	issues := check("a.js", long)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if len(issues[0].Context) > maxContextLen {
		t.Errorf("context not truncated: %d chars", len(issues[0].Context))
	}
}

func TestContextTruncationKeepsValidUTF8(t *testing.T) {
	// Multi-byte runes positioned so a byte-offset cut would split one.
	long := "eval(x); // "
	for len(long) < maxContextLen+10 {
		long += "héllö wörld "
	}
	check := SecurityRules()[0].Checker(domain.CategorySecurity)
	issues := check("a.js", long)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	ctx := issues[0].Context
	if len(ctx) > maxContextLen {
		t.Errorf("context not truncated: %d bytes", len(ctx))
	}
	if !utf8.ValidString(ctx) {
		t.Errorf("truncated context is not valid UTF-8: %q", ctx)
	}
}
