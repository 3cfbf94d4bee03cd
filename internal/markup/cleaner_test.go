package markup

import (
	"strings"
	"testing"
)

func TestClean_RemovesEmptyWrappers(t *testing.T) {
	c := NewHTMLCleaner(2)

	in := `<div class="wrap">
<div class="empty"></div>
<span>  </span>
<p>Kept</p>
</div>`
	got, err := c.Clean(in)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if strings.Contains(got, "empty") {
		t.Errorf("empty div survived:\n%s", got)
	}
	if strings.Contains(got, "<span>") {
		t.Errorf("empty span survived:\n%s", got)
	}
	if !strings.Contains(got, "<p>Kept</p>") {
		t.Errorf("visible text lost:\n%s", got)
	}
}

func TestClean_NestedEmptyWrappers(t *testing.T) {
	c := NewHTMLCleaner(2)

	// The outer div becomes empty once the inner one is dropped.
	got, err := c.Clean(`<div><div class="inner"></div></div><p>x</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<div>") {
		t.Errorf("nested empty wrappers survived: %q", got)
	}
}

func TestClean_CommentOnlyDiv(t *testing.T) {
	c := NewHTMLCleaner(2)

	got, err := c.Clean(`<div class="x"> <!-- placeholder --> </div><p>x</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "placeholder") {
		t.Errorf("comment-only div survived: %q", got)
	}
}

func TestClean_CollapsesBlankRuns(t *testing.T) {
	c := NewHTMLCleaner(2)

	got, err := c.Clean("<p>a</p>\n\n\n\n<p>b</p>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank run survived: %q", got)
	}
}

func TestClean_Reindent(t *testing.T) {
	c := NewHTMLCleaner(2)

	in := `<nav>
<ul>
<li><a href="/">Home</a></li>
</ul>
</nav>`
	got, err := c.Clean(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `<nav>
  <ul>
    <li><a href="/">Home</a></li>
  </ul>
</nav>`
	if got != want {
		t.Errorf("reindent mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestClean_VoidElementsDoNotNest(t *testing.T) {
	c := NewHTMLCleaner(2)

	in := `<form>
<input type="text">
<br>
<button>Go</button>
</form>`
	got, err := c.Clean(in)
	if err != nil {
		t.Fatal(err)
	}
	want := `<form>
  <input type="text">
  <br>
  <button>Go</button>
</form>`
	if got != want {
		t.Errorf("void handling mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestClean_Idempotent(t *testing.T) {
	c := NewHTMLCleaner(2)

	in := `<div class="hero">
<div></div>
<h1>Title</h1>


<p>Body text</p>
</div>`
	once, err := c.Clean(in)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := c.Clean(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func TestRenameClasses(t *testing.T) {
	rules := []RenameRule{
		{From: `class="nav nav--header"`, To: `class="ul ul--header"`},
		{From: "nav__item", To: "ul__item"},
		{From: "nav__brand", To: "brand"},
	}
	in := `<ul class="nav nav--header"><li class="nav__item"><a class="nav__brand">X</a></li><li class="nav__item">Y</li></ul>`

	res := RenameClasses(in, rules)
	if strings.Contains(res.Text, "nav__item") {
		t.Errorf("rule not applied: %q", res.Text)
	}
	if got := res.Hits; got[0] != 1 || got[1] != 2 || got[2] != 1 {
		t.Errorf("hits = %v, want [1 2 1]", got)
	}
}

func TestRenameClasses_Ordered(t *testing.T) {
	// The second rule matches text produced by the first.
	rules := []RenameRule{
		{From: "nav__link", To: "link"},
		{From: `link"`, To: `link link--header"`},
	}
	res := RenameClasses(`<a class="nav__link">`, rules)
	if res.Text != `<a class="link link--header">` {
		t.Errorf("got %q", res.Text)
	}
}

func TestParseRenameRule(t *testing.T) {
	r, err := ParseRenameRule("old=new")
	if err != nil {
		t.Fatal(err)
	}
	if r.From != "old" || r.To != "new" {
		t.Errorf("got %+v", r)
	}
	for _, bad := range []string{"", "old", "=new", "old="} {
		if _, err := ParseRenameRule(bad); err == nil {
			t.Errorf("ParseRenameRule(%q) accepted", bad)
		}
	}
}
