package arrangement

import "testing"

func mon(name string, w, h, x, y int, r Rotation) Monitor {
	return Monitor{DisplayName: name, Geometry: Geometry{Width: w, Height: h, Position: Point{x, y}, Rotation: r}}
}

func TestFindMatch_SizeMismatchNeverMatches(t *testing.T) {
	live := Arrangement{mon("A", 1920, 1080, 0, 0, RotateNone), mon("B", 1920, 1080, 1920, 0, RotateNone)}
	stored := []Arrangement{
		{mon("A", 1920, 1080, 0, 0, RotateNone)},
		{mon("A", 1920, 1080, 0, 0, RotateNone), mon("B", 1920, 1080, 1920, 0, RotateNone), mon("C", 1, 1, 0, 0, RotateNone)},
	}
	if got, ok := FindMatch(live, stored); ok {
		t.Fatalf("FindMatch() = %+v, want no match", got)
	}
}

func TestFindMatch_IgnoresGeometryAndOrder(t *testing.T) {
	live := Arrangement{mon("B", 1920, 1080, 0, 0, RotateNone), mon("A", 2560, 1440, 1920, 0, RotateNone)}
	stored := []Arrangement{
		{mon("A", 1440, 2560, -1440, 0, Rotate90), mon("B", 1080, 1920, 0, 0, Rotate270)},
	}
	got, ok := FindMatch(live, stored)
	if !ok {
		t.Fatal("FindMatch() found no match, want stored[0]")
	}
	if !Equal(got, stored[0]) {
		t.Fatalf("FindMatch() = %+v, want %+v", got, stored[0])
	}
}

func TestFindMatch_RespectsMultiplicity(t *testing.T) {
	live := Arrangement{mon("A", 1, 1, 0, 0, RotateNone), mon("A", 1, 1, 1, 0, RotateNone), mon("B", 1, 1, 2, 0, RotateNone)}
	stored := []Arrangement{
		{mon("A", 1, 1, 0, 0, RotateNone), mon("B", 1, 1, 1, 0, RotateNone), mon("B", 1, 1, 2, 0, RotateNone)},
	}
	if _, ok := FindMatch(live, stored); ok {
		t.Fatal("FindMatch() matched different name multisets")
	}
}

func TestFindMatch_MostRecentWins(t *testing.T) {
	live := Arrangement{mon("A", 1920, 1080, 0, 0, RotateNone)}
	newer := Arrangement{mon("A", 1080, 1920, 0, 0, Rotate90)}
	older := Arrangement{mon("A", 1920, 1080, 0, 0, RotateNone)}

	got, ok := FindMatch(live, []Arrangement{newer, older})
	if !ok {
		t.Fatal("FindMatch() found no match")
	}
	if got[0].Rotation != Rotate90 {
		t.Fatalf("FindMatch() returned %+v, want the first (most recent) candidate", got)
	}
}

func TestFindMatch_SkipsIncompatibleThenMatches(t *testing.T) {
	live := Arrangement{mon("A", 1, 1, 0, 0, RotateNone), mon("B", 1, 1, 1, 0, RotateNone)}
	stored := []Arrangement{
		{mon("A", 1, 1, 0, 0, RotateNone), mon("C", 1, 1, 1, 0, RotateNone)},
		{mon("B", 5, 5, 0, 0, RotateNone), mon("A", 5, 5, 5, 0, RotateNone)},
	}
	got, ok := FindMatch(live, stored)
	if !ok || !Equal(got, stored[1]) {
		t.Fatalf("FindMatch() = %+v, %v; want stored[1]", got, ok)
	}
}

func TestPairUp_DuplicateNamesAssignedInOrder(t *testing.T) {
	live := Arrangement{
		{DeviceName: "DP-1", DisplayName: "Dell", Geometry: Geometry{Width: 2560, Height: 1440}},
		{DeviceName: "HDMI-1", DisplayName: "Acer", Geometry: Geometry{Width: 1920, Height: 1080, Position: Point{-1920, 0}}},
		{DeviceName: "DP-2", DisplayName: "Dell", Geometry: Geometry{Width: 2560, Height: 1440, Position: Point{2560, 0}}},
	}
	target := Arrangement{
		mon("Dell", 2560, 1440, 0, 0, RotateNone),
		mon("Dell", 1440, 2560, 2560, -800, Rotate90),
		mon("Acer", 1920, 1080, -1920, 0, RotateNone),
	}

	pairs, ok := PairUp(live, target)
	if !ok {
		t.Fatal("PairUp() failed")
	}
	if pairs[0].Target.Rotation != RotateNone || pairs[0].Changed() {
		t.Errorf("DP-1 should take the first Dell record unchanged, got %+v", pairs[0])
	}
	if pairs[1].Target.DisplayName != "Acer" || pairs[1].Changed() {
		t.Errorf("HDMI-1 should pair with Acer unchanged, got %+v", pairs[1])
	}
	if pairs[2].Target.Rotation != Rotate90 || !pairs[2].Changed() {
		t.Errorf("DP-2 should take the second Dell record and change, got %+v", pairs[2])
	}
	if pairs[2].Live.DeviceName != "DP-2" {
		t.Errorf("pair keeps the live device name, got %q", pairs[2].Live.DeviceName)
	}
}

func TestPairUp_Incompatible(t *testing.T) {
	live := Arrangement{mon("A", 1, 1, 0, 0, RotateNone)}
	if _, ok := PairUp(live, Arrangement{mon("B", 1, 1, 0, 0, RotateNone)}); ok {
		t.Fatal("PairUp() paired different names")
	}
	if _, ok := PairUp(live, Arrangement{}); ok {
		t.Fatal("PairUp() paired arrangements of different sizes")
	}
}

func TestShapeCompatible(t *testing.T) {
	a := Arrangement{mon("X", 1, 1, 0, 0, RotateNone), mon("Y", 1, 1, 0, 0, RotateNone)}
	b := Arrangement{mon("Y", 9, 9, 9, 9, Rotate180), mon("X", 2, 2, 2, 2, Rotate90)}
	if !ShapeCompatible(a, b) {
		t.Fatal("ShapeCompatible() = false for a permutation")
	}
	if ShapeCompatible(a, a[:1]) {
		t.Fatal("ShapeCompatible() = true for different sizes")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		arr     Arrangement
		wantErr bool
	}{
		{"valid", dellPair(), false},
		{"empty", Arrangement{}, true},
		{"duplicate device", Arrangement{
			{DeviceName: "DP-1", DisplayName: "A", Geometry: Geometry{Width: 1, Height: 1}},
			{DeviceName: "DP-1", DisplayName: "B", Geometry: Geometry{Width: 1, Height: 1}},
		}, true},
		{"stored records without device names", Arrangement{mon("A", 1, 1, 0, 0, RotateNone), mon("A", 1, 1, 1, 0, RotateNone)}, false},
		{"bad rotation", Arrangement{mon("A", 1, 1, 0, 0, Rotation(7))}, true},
		{"zero width", Arrangement{mon("A", 0, 1, 0, 0, RotateNone)}, true},
		{"newline in name", Arrangement{mon("Dell\nU2720Q", 1, 1, 0, 0, RotateNone)}, true},
		{"carriage return in name", Arrangement{mon("Dell\rU2720Q", 1, 1, 0, 0, RotateNone)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.arr.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
