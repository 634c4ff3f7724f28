package ui

import "testing"

func TestParseMarkup(t *testing.T) {
	nodes, err := ParseMarkup(`Intro <b>bold</b><div id="box" class="a b" style="left: 3; top:4" data-x="1" hidden><img src="p.png" alt="pic"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].Tag != "#text" || nodes[0].Text != "Intro " {
		t.Errorf("text node = %q %q", nodes[0].Tag, nodes[0].Text)
	}
	box := nodes[2]
	if box.ID != "box" || !box.HasClass("a") || !box.HasClass("b") || !box.Hidden {
		t.Errorf("box = %+v", box)
	}
	if v, _ := box.Style("left"); v != "3" {
		t.Errorf("left = %q", v)
	}
	if v, _ := box.Style("top"); v != "4" {
		t.Errorf("top = %q", v)
	}
	if box.Attr("data-x") != "1" {
		t.Error("attribute lost")
	}
	if img := box.First("img"); img == nil || img.Attr("src") != "p.png" {
		t.Error("nested img lost")
	}
}

func TestMarkupRoundTrip(t *testing.T) {
	in := `<p class="lead">Hello &amp; welcome</p><img alt="x" src="a.png"><ul><li>one</li></ul>`
	nodes, err := ParseMarkup(in)
	if err != nil {
		t.Fatal(err)
	}
	holder := NewElement("div")
	holder.Append(nodes...)
	if got := holder.InnerMarkup(); got != in {
		t.Errorf("InnerMarkup = %q\nwant          %q", got, in)
	}
	if got := holder.OuterMarkup(); got != "<div>"+in+"</div>" {
		t.Errorf("OuterMarkup = %q", got)
	}
}

func TestParseMarkupIgnoresWhitespace(t *testing.T) {
	nodes, err := ParseMarkup("\n  <p>a</p>\n  <p>b</p>\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Errorf("got %d nodes, want 2 paragraphs", len(nodes))
	}
}
