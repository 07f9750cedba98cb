package layout

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

const pricesTable = `<html><body><div class="market"><table>
<tr><td>Gram Altın</td><td>2.450,10</td><td>2.460,20</td></tr>
<tr><td>USD</td><td>34,10</td><td>34,20</td></tr>
</table></div></body></html>`

func TestFingerprint_IgnoresPriceChanges(t *testing.T) {
	updated := strings.NewReplacer("2.450,10", "2.470,00", "34,10", "34,15").Replace(pricesTable)

	fp1 := Fingerprint(mustDoc(t, pricesTable))
	fp2 := Fingerprint(mustDoc(t, updated))

	if fp1 != fp2 {
		t.Errorf("price updates changed the fingerprint, distance: %d", Distance(fp1, fp2))
	}
}

func TestFingerprint_DetectsRedesign(t *testing.T) {
	redesign := `<html><body><section class="tiles">
<article class="card"><h3>Gram Altın</h3><span class="buy">2.450,10</span><span class="sell">2.460,20</span></article>
<article class="card"><h3>USD</h3><span class="buy">34,10</span><span class="sell">34,20</span></article>
</section></body></html>`

	dist := Distance(Fingerprint(mustDoc(t, pricesTable)), Fingerprint(mustDoc(t, redesign)))
	if dist < 3 {
		t.Errorf("different layouts should have larger distance, got: %d", dist)
	}
}

func TestFingerprint_SkipsScripts(t *testing.T) {
	withScript := strings.Replace(pricesTable, "<table>", "<script>var x = 1;</script><table>", 1)

	if Fingerprint(mustDoc(t, pricesTable)) != Fingerprint(mustDoc(t, withScript)) {
		t.Error("script elements should not affect the fingerprint")
	}
}

func TestFingerprint_EmptyBody(t *testing.T) {
	if fp := Fingerprint(mustDoc(t, "")); fp != 0 {
		t.Errorf("empty body should produce fingerprint 0, got: %064b", fp)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMakeShingles(t *testing.T) {
	shingles := makeShingles([]string{"a", "b", "c", "d"}, 3)
	expected := []string{"a_b_c", "b_c_d"}

	if len(shingles) != len(expected) {
		t.Fatalf("expected %d shingles, got %d: %v", len(expected), len(shingles), shingles)
	}
	for i, s := range shingles {
		if s != expected[i] {
			t.Errorf("shingle[%d] = %q, want %q", i, s, expected[i])
		}
	}

	if got := makeShingles([]string{"a", "b"}, 3); got != nil {
		t.Errorf("expected nil for fewer tokens than n, got: %v", got)
	}
}

func TestTracker_Observe(t *testing.T) {
	tr := NewTracker(4)

	if d, drifted := tr.Observe("k", 0); d != 0 || drifted {
		t.Errorf("first observation should not drift, got distance %d drifted %v", d, drifted)
	}
	if d, drifted := tr.Observe("k", 0xF); d != 4 || drifted {
		t.Errorf("distance at threshold should not drift, got distance %d drifted %v", d, drifted)
	}
	if d, drifted := tr.Observe("k", 0xF0F); d != 4 || drifted {
		t.Errorf("distance is relative to the previous fingerprint, got %d drifted %v", d, drifted)
	}
	if _, drifted := tr.Observe("k", ^uint64(0)); !drifted {
		t.Error("large distance should drift")
	}
	if _, drifted := tr.Observe("other", 0); drifted {
		t.Error("keys are tracked independently")
	}
}
