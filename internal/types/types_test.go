package types

import "testing"

func TestBox_Union(t *testing.T) {
	a := Box{X: 10, Y: 20, Width: 100, Height: 30}
	b := Box{X: 50, Y: 45, Width: 200, Height: 20}

	got := a.Union(b)
	want := Box{X: 10, Y: 20, Width: 240, Height: 45}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if b.Union(a) != want {
		t.Errorf("union should be symmetric")
	}
}

func TestBox_VerticalOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want int
	}{
		{"disjoint", Box{Y: 0, Height: 10, Width: 1}, Box{Y: 20, Height: 10, Width: 1}, 0},
		{"touching", Box{Y: 0, Height: 10, Width: 1}, Box{Y: 10, Height: 10, Width: 1}, 0},
		{"partial", Box{Y: 0, Height: 10, Width: 1}, Box{Y: 6, Height: 10, Width: 1}, 4},
		{"contained", Box{Y: 0, Height: 30, Width: 1}, Box{Y: 5, Height: 10, Width: 1}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.VerticalOverlap(tt.b); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseBox(t *testing.T) {
	b, err := ParseBox(" 120,300,540,42 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.String() != "120,300,540,42" {
		t.Errorf("unexpected box %v", b)
	}

	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		if _, err := ParseBox(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParsePageLabel(t *testing.T) {
	tests := []struct {
		in           string
		wantLabel    string
		wantImplicit bool
		wantErr      bool
	}{
		{"12", "12", false, false},
		{"[12]", "12", true, false},
		{"[12", "", false, true},
		{"[]", "", false, true},
		{"", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			label, implicit, err := ParsePageLabel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if label != tt.wantLabel || implicit != tt.wantImplicit {
				t.Errorf("got (%q, %v), want (%q, %v)", label, implicit, tt.wantLabel, tt.wantImplicit)
			}
		})
	}
}

func TestPageRef_DisplayLabel(t *testing.T) {
	if got := (PageRef{Label: "7", Implicit: true}).DisplayLabel(); got != "[7]" {
		t.Errorf("expected [7], got %s", got)
	}
	if got := (PageRef{Label: "7"}).DisplayLabel(); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestEntry_Bounds(t *testing.T) {
	e := Entry{Lines: []TextBox{
		{Box: Box{X: 100, Y: 300, Width: 400, Height: 40}, Text: "Müller Hans, Kramgasse 10"},
		{Box: Box{X: 140, Y: 340, Width: 120, Height: 38}, Text: "(Sattler)"},
	}}
	want := Box{X: 100, Y: 300, Width: 400, Height: 78}
	if got := e.Bounds(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if len(e.Boxes()) != 2 {
		t.Errorf("expected 2 boxes, got %d", len(e.Boxes()))
	}
}
