package a11y

import (
	"strings"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		c := New(nil)
		if c == nil {
			t.Fatal("expected non-nil cleaner")
		}
		if c.config == nil {
			t.Fatal("expected non-nil config")
		}
		if !c.config.AnnotateIframes {
			t.Error("expected AnnotateIframes to be true by default")
		}
		if len(c.rules) != 6 {
			t.Errorf("expected 6 default rules, got %d", len(c.rules))
		}
	})

	t.Run("custom config is used", func(t *testing.T) {
		cfg := &Config{
			NormalizeTags: true,
			ExtraIframeRules: []IframeRule{
				{Match: "//maps.example.org", Title: "Map"},
			},
		}
		c := New(cfg)
		if c.config.AnnotateIframes {
			t.Error("expected AnnotateIframes to be false")
		}
		if len(c.rules) != 7 {
			t.Errorf("expected 7 rules, got %d", len(c.rules))
		}
	})
}

func TestName(t *testing.T) {
	c := New(nil)
	if c.Name() != "a11y" {
		t.Errorf("expected name 'a11y', got '%s'", c.Name())
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		config   *Config
		contains []string
		excludes []string
	}{
		{
			name:     "titles youtube iframe and drops frameborder",
			html:     `<iframe src="https://www.youtube.com/embed/abc" frameborder="0"></iframe>`,
			contains: []string{`title="Video"`, `src="https://www.youtube.com/embed/abc"`},
			excludes: []string{"frameborder"},
		},
		{
			name:     "titles google calendar iframe",
			html:     `<iframe src="https://calendar.google.com/calendar/embed?src=x"></iframe>`,
			contains: []string{`title="Calendar"`},
		},
		{
			name:     "titles vimeo iframe",
			html:     `<iframe src="https://player.vimeo.com/video/1"></iframe>`,
			contains: []string{`title="Video"`},
		},
		{
			name:     "titles relay iframe",
			html:     `<iframe src="https://boisestate.techsmithrelay.com/connector/embed/index/x"></iframe>`,
			contains: []string{`title="Video"`},
		},
		{
			name:     "titles slideshare iframe",
			html:     `<iframe src="//www.slideshare.net/slideshow/embed_code/key/1"></iframe>`,
			contains: []string{`title="Slides"`},
		},
		{
			name:     "titles google docs iframe",
			html:     `<iframe src="https://docs.google.com/document/d/1/pub?embedded=true"></iframe>`,
			contains: []string{`title="Embedded document"`},
		},
		{
			name:     "replaces empty title",
			html:     `<iframe src="https://docs.google.com/x" title=""></iframe>`,
			contains: []string{`title="Embedded document"`},
			excludes: []string{`title=""`},
		},
		{
			name:     "keeps existing title",
			html:     `<iframe src="https://www.youtube.com/embed/abc" title="Lecture 1" frameborder="0"></iframe>`,
			contains: []string{`title="Lecture 1"`},
			excludes: []string{`title="Video"`, "frameborder"},
		},
		{
			name:     "leaves unknown iframe untitled",
			html:     `<iframe src="https://example.com/embed" frameborder="1"></iframe>`,
			excludes: []string{"title=", "frameborder"},
		},
		{
			name:     "first matching rule wins",
			html:     `<iframe src="https://www.youtube.com/embed/x?next=//docs.google.com"></iframe>`,
			contains: []string{`title="Video"`},
			excludes: []string{"Embedded document"},
		},
		{
			name:     "matching is case sensitive",
			html:     `<iframe src="https://WWW.YOUTUBE.COM/embed/x"></iframe>`,
			excludes: []string{"title="},
		},
		{
			name:     "custom relay host",
			html:     `<iframe src="https://media.example.edu/embed/1"></iframe>`,
			config:   &Config{AnnotateIframes: true, RelayHost: "media.example.edu"},
			contains: []string{`title="Video"`},
		},
		{
			name: "extra rule after built-ins",
			html: `<iframe src="https://maps.example.org/embed"></iframe>`,
			config: &Config{AnnotateIframes: true, ExtraIframeRules: []IframeRule{
				{Match: "//maps.example.org", Title: "Map"},
			}},
			contains: []string{`title="Map"`},
		},
		{
			name: "summarizes canonical tablepress table",
			html: `<table id="tablepress-7" class="tablepress tablepress-id-7"><tbody><tr><td>1</td></tr></tbody></table>` +
				`<span class="tablepress-table-description tablepress-table-description-id-7">Enrollment by year</span>`,
			contains: []string{`summary="Enrollment by year"`},
		},
		{
			name: "does not carry a summary over to the next table",
			html: `<table class="tablepress tablepress-id-1"><tbody><tr><td>1</td></tr></tbody></table>` +
				`<span class="tablepress-table-description tablepress-table-description-id-1">First</span>` +
				`<table class="tablepress tablepress-id-2"><tbody><tr><td>2</td></tr></tbody></table>`,
			contains: []string{`<table class="tablepress tablepress-id-1" summary="First">`, `<table class="tablepress tablepress-id-2">`},
		},
		{
			name:     "ignores tables that are not tablepress",
			html:     `<table class="data"><tbody><tr><td>1</td></tr></tbody></table><span class="tablepress-table-description tablepress-table-description-id-">x</span>`,
			excludes: []string{"summary="},
		},
		{
			name:     "removes empty headings",
			html:     `<h1></h1><h2 class="spacer"></h2><h3><span></span></h3><h6 id="x"></h6><p>Body</p>`,
			contains: []string{"<p>Body</p>"},
			excludes: []string{"<h1", "<h2", "<h3", "<h6"},
		},
		{
			name:     "keeps whitespace heading",
			html:     `<h4> </h4><h5>Title</h5>`,
			contains: []string{"<h4> </h4>", "<h5>Title</h5>"},
		},
		{
			name:     "keeps heading with nested text",
			html:     `<h2><a href="/x"><span>Go</span></a></h2>`,
			contains: []string{`<h2><a href="/x"><span>Go</span></a></h2>`},
		},
		{
			name:     "keeps leading script in fragment",
			html:     `<script>var a = 1;</script><p>x</p>`,
			contains: []string{"<script>var a = 1;</script>", "<p>x</p>"},
		},
		{
			name:     "strips document wrapper",
			html:     "<!DOCTYPE html>\n<html><head></head><body><p>Inner</p></body></html>",
			contains: []string{"<p>Inner</p>"},
			excludes: []string{"<html", "<body", "<head", "DOCTYPE", "</body>", "</html>"},
		},
		{
			name:     "titles iframe inside noscript",
			html:     `<noscript><iframe frameborder="0" src="https://www.youtube.com/embed/x"></iframe></noscript>`,
			contains: []string{`<noscript><iframe src="https://www.youtube.com/embed/x" title="Video"></iframe></noscript>`},
			excludes: []string{"frameborder", "&lt;"},
		},
		{
			name:     "removes empty heading inside noscript",
			html:     `<noscript><h2></h2><p>x</p></noscript>`,
			contains: []string{"<noscript><p>x</p></noscript>"},
			excludes: []string{"<h2>"},
		},
		{
			name:     "normalizes tags inside noscript",
			html:     `<noscript><b>fallback</b></noscript>`,
			contains: []string{"<noscript><strong>fallback</strong></noscript>"},
		},
		{
			name:     "disabled passes leave markup alone",
			html:     `<b>x</b><h1></h1><iframe src="https://www.youtube.com/embed/a" frameborder="0"></iframe>`,
			config:   &Config{},
			contains: []string{"<b>x</b>", "<h1></h1>", `frameborder="0"`},
			excludes: []string{"<strong>", "title="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.config)
			result, err := c.Clean(tt.html)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected result to contain %q, got:\n%s", s, result)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("expected result to not contain %q, got:\n%s", s, result)
				}
			}
		})
	}
}

func TestCleanExactOutput(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"empty input", "", ""},
		{"bold", "<b>text</b>", "<strong>text</strong>"},
		{"upper case bold", "<B>Loud</B>", "<strong>Loud</strong>"},
		{"italic with attribute", `<i class="x">t</i>`, `<em class="x">t</em>`},
		{
			name: "big and iframe untouched",
			html: `<p><big>Big</big> <iframe src="https://example.com/"></iframe></p>`,
			want: `<p><big>Big</big> <iframe src="https://example.com/"></iframe></p>`,
		},
		{
			name: "tablepress summary",
			html: `<table class="tablepress-id3"><tbody><tr><td>Q1</td></tr></tbody></table>` +
				`<span class="tablepress-table-description tablepress-table-description-id-3">Revenue by quarter</span>`,
			want: `<table class="tablepress-id3" summary="Revenue by quarter"><tbody><tr><td>Q1</td></tr></tbody></table>` +
				`<span class="tablepress-table-description tablepress-table-description-id-3">Revenue by quarter</span>`,
		},
		{
			name: "full document reduced to fragment",
			html: `<!DOCTYPE html><html><body><p>Hello</p></body></html>`,
			want: `<p>Hello</p>`,
		},
		{"orphan table row", "<tr><td>cell</td></tr>", "<tr><td>cell</td></tr>"},
		{"orphan table cells", "<td>a</td><th>b</th>", "<td>a</td><th>b</th>"},
		{"orphan table body", "<tbody><tr><td><b>x</b></td></tr></tbody>", "<tbody><tr><td><strong>x</strong></td></tr></tbody>"},
		{"leading comment before row", "<!-- row --><tr><td>c</td></tr>", "<!-- row --><tr><td>c</td></tr>"},
		{
			name: "noscript iframe fallback",
			html: `<noscript><iframe frameborder="0" src="https://www.youtube.com/embed/x"></iframe></noscript>`,
			want: `<noscript><iframe src="https://www.youtube.com/embed/x" title="Video"></iframe></noscript>`,
		},
		{
			name: "iframe title appended",
			html: `<iframe src="https://player.vimeo.com/video/1" frameborder="0" allowfullscreen></iframe>`,
			want: `<iframe src="https://player.vimeo.com/video/1" allowfullscreen="" title="Video"></iframe>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.html)
			if got != tt.want {
				t.Errorf("Transform() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		`<iframe src="https://www.youtube.com/embed/abc" frameborder="0"></iframe><iframe src="https://example.com"></iframe>`,
		`<h1></h1><h2>Kept</h2><div><h3><span></span></h3></div>`,
		`<p><b>bold</b> and <i>italic</i> <big>big</big></p>`,
		`<table class="tablepress tablepress-id-2"><tbody><tr><td>x</td></tr></tbody></table>` +
			`<span class="tablepress-table-description tablepress-table-description-id-2">Two</span>`,
		`<div><p>unclosed <b>bold<table><tr><td>x`,
	}

	for _, cfg := range []*Config{DefaultConfig(), PresetLegacy(), treeConfig()} {
		c := New(cfg)
		for _, in := range inputs {
			once, _ := c.Clean(in)
			twice, _ := c.Clean(once)
			if once != twice {
				t.Errorf("transform not idempotent for %q (tag mode %s):\nonce:  %s\ntwice: %s", in, cfg.TagMode, once, twice)
			}
		}
	}
}

func TestCleanMalformedInput(t *testing.T) {
	inputs := []string{
		`<div><p>unclosed <b>bold<table><tr><td>x`,
		`</h2></b>stray closers<h3`,
		`<iframe src="https://www.youtube.com/embed/x"`,
		"<<<>>>&&&",
		`<table class="tablepress"><tr><td>no id</td></tr>`,
	}

	c := New(nil)
	for _, in := range inputs {
		result := c.CleanWithStats(in)
		if result.Error != nil {
			t.Errorf("unexpected error for %q: %v", in, result.Error)
		}
	}
}

func TestCleanTreeMode(t *testing.T) {
	c := New(treeConfig())

	t.Run("renames nodes and keeps attributes", func(t *testing.T) {
		got, _ := c.Clean(`<b class="k" data-x="1">x</b><i>y</i>`)
		want := `<strong class="k" data-x="1">x</strong><em>y</em>`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("leaves script text alone", func(t *testing.T) {
		got, _ := c.Clean(`<script>var s = "<b>";</script><b>x</b>`)
		if !strings.Contains(got, `var s = "<b>";`) {
			t.Errorf("expected script body untouched, got %s", got)
		}
		if !strings.Contains(got, "<strong>x</strong>") {
			t.Errorf("expected bold element renamed, got %s", got)
		}
	})

	t.Run("agrees with serialized mode on plain markup", func(t *testing.T) {
		in := `<p><b>bold</b>, <i title="t">italic</i>, <big>big</big>, <br/> <img src="a.png"/></p>`
		serialized, _ := New(nil).Clean(in)
		tree, _ := c.Clean(in)
		if serialized != tree {
			t.Errorf("modes disagree:\nserialized: %s\ntree:       %s", serialized, tree)
		}
	})
}

func TestCleanLegacyTableIDs(t *testing.T) {
	c := New(PresetLegacy())

	t.Run("canonical class", func(t *testing.T) {
		got, _ := c.Clean(`<table class="tablepress tablepress-id-5"><tbody><tr><td>1</td></tr></tbody></table>` +
			`<span class="tablepress-table-description tablepress-table-description-id-5">Five</span>`)
		if !strings.Contains(got, `summary="Five"`) {
			t.Errorf("expected summary, got %s", got)
		}
	})

	t.Run("short class has no positional id", func(t *testing.T) {
		result := c.CleanWithStats(`<table class="tablepress-id3"><tbody><tr><td>1</td></tr></tbody></table>` +
			`<span class="tablepress-table-description tablepress-table-description-id-3">Three</span>`)
		if strings.Contains(result.Content, "summary=") {
			t.Errorf("expected no summary, got %s", result.Content)
		}
		if !result.HasWarnings() {
			t.Error("expected a warning for the missing id")
		}
	})
}

func TestCleanWithStats(t *testing.T) {
	c := New(nil)
	result := c.CleanWithStats(`<iframe src="https://www.youtube.com/embed/a" frameborder="0"></iframe>` +
		`<h2></h2><b>x</b><i>y</i>` +
		`<table class="tablepress tablepress-id-9"><tbody><tr><td>1</td></tr></tbody></table>`)

	if result.Stats == nil {
		t.Fatal("expected non-nil stats")
	}
	if result.Stats.InputBytes == 0 || result.Stats.OutputBytes == 0 {
		t.Error("expected byte counts to be recorded")
	}

	iframes := result.Stats.GetPhase(PhaseIframes)
	if iframes == nil {
		t.Fatal("expected iframes phase")
	}
	if iframes.Seen != 1 || iframes.Changes != 2 {
		t.Errorf("expected iframes seen=1 changes=2, got seen=%d changes=%d", iframes.Seen, iframes.Changes)
	}
	if iframes.Details["title:Video"] != 1 || iframes.Details["frameborder"] != 1 {
		t.Errorf("unexpected iframe details: %v", iframes.Details)
	}

	if got := result.Stats.Changes(PhaseHeadings); got != 1 {
		t.Errorf("expected 1 heading removed, got %d", got)
	}
	if got := result.Stats.Changes(PhaseTags); got != 2 {
		t.Errorf("expected 2 tags renamed, got %d", got)
	}
	if got := result.Stats.Changes(PhaseTables); got != 0 {
		t.Errorf("expected no table summaries, got %d", got)
	}
	if result.Stats.GetPhase(PhaseTables).Details["missing"] != 1 {
		t.Error("expected missing description to be recorded")
	}

	if !result.HasWarnings() {
		t.Fatal("expected warning for missing description")
	}
	if !strings.Contains(result.Warnings[0].Context, DescriptionClass("9")) {
		t.Errorf("expected warning context to name the description class, got %q", result.Warnings[0].Context)
	}

	if c.Stats() != result.Stats {
		t.Error("expected Stats() to return the last run's stats")
	}
}

func TestObserver(t *testing.T) {
	c := New(nil)

	var mu sync.Mutex
	var calls int
	var changes int
	c.SetObserver(func(r *Result) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		changes += r.Stats.TotalChanges()
	})

	if c.Observer() == nil {
		t.Fatal("Observer() should return the registered function")
	}

	_, _ = c.Clean("<b>x</b>")
	_, _ = c.Clean("")

	if calls != 2 {
		t.Errorf("expected 2 observer calls, got %d", calls)
	}
	if changes != 1 {
		t.Errorf("expected 1 change observed, got %d", changes)
	}
}

func TestContextFor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>x</p>", "body"},
		{"", "body"},
		{"<tr><td>1</td></tr>", "tbody"},
		{"  <TD>1</TD>", "tr"},
		{"<th scope=col>h</th>", "tr"},
		{"<tbody></tbody>", "table"},
		{"<caption>c</caption>", "table"},
		{"<col span=2>", "colgroup"},
		{"<!-- x --><tr></tr>", "tbody"},
		{"<table><tr></tr></table>", "body"},
		{"<track src=x>", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := contextFor(tt.input).Data; got != tt.want {
				t.Errorf("contextFor(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTreeModeNoscript(t *testing.T) {
	c := New(treeConfig())
	got, _ := c.Clean(`<noscript><i>js off</i><h3></h3></noscript>`)
	if got != `<noscript><em>js off</em></noscript>` {
		t.Errorf("Clean() = %q", got)
	}
}

func TestCleanConcurrent(t *testing.T) {
	c := New(nil)
	in := `<iframe src="https://www.youtube.com/embed/a"></iframe><h1></h1><b>x</b>`
	want, _ := c.Clean(in)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := c.Clean(in)
			if got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent result differs: %s", got)
	}
}

func TestRules(t *testing.T) {
	c := New(nil)
	rules := c.Rules()
	rules[0].Title = "changed"

	if c.Rules()[0].Title != "Calendar" {
		t.Error("Rules() should return a copy")
	}
}

func treeConfig() *Config {
	cfg := DefaultConfig()
	cfg.TagMode = TagModeTree
	return cfg
}
