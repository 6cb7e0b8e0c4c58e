package chunk

import (
	"errors"
	"testing"
)

func TestNewValidates(t *testing.T) {
	if _, err := New(Key{0, 0, 0}, 0); err == nil {
		t.Error("zero resolution should be rejected")
	}
	if _, err := New(Key{0, 0, 0}, MaxResolution+1); err == nil {
		t.Error("oversized resolution should be rejected")
	}
	if _, err := New(Key{0, 0, -1}, 8); err == nil {
		t.Error("invalid key should be rejected")
	}
	d, err := New(Key{1, 2, 3}, 8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(d.Values()) != 8*8*NumChannels {
		t.Errorf("len(Values()) = %d, want %d", len(d.Values()), 8*8*NumChannels)
	}
	if d.IsDirty() {
		t.Error("new chunk should start clean")
	}
}

func TestFromValuesLength(t *testing.T) {
	if _, err := FromValues(Key{}, 2, make([]float32, 2*2*NumChannels-1)); err == nil {
		t.Error("short value slice should be rejected")
	}
	if _, err := FromValues(Key{}, 2, make([]float32, 2*2*NumChannels)); err != nil {
		t.Errorf("FromValues() error = %v", err)
	}
}

func TestSetClampsAndMarksDirty(t *testing.T) {
	d, _ := New(Key{}, 4)
	d.Set(1, 2, Biomass, 1.5)
	if got := d.At(1, 2, Biomass); got != 1 {
		t.Errorf("At() = %v, want 1 (clamped)", got)
	}
	d.Set(3, 3, WindX, -0.2)
	if got := d.At(3, 3, WindX); got != 0 {
		t.Errorf("At() = %v, want 0 (clamped)", got)
	}
	if !d.IsDirty() {
		t.Error("Set should mark the chunk dirty")
	}
	if px := d.Pixel(1, 2); px[Biomass] != 1 || px[Height] != 0 {
		t.Errorf("Pixel() = %v", px)
	}
	d.MarkClean()
	if d.IsDirty() {
		t.Error("MarkClean should clear dirty")
	}
}

func TestEqualAndClone(t *testing.T) {
	a, _ := New(Key{1, 1, 1}, 4)
	a.Set(0, 0, Height, 0.25)
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should equal original")
	}
	b.Set(0, 0, Height, 0.5)
	if a.Equal(b) {
		t.Error("modified clone should differ")
	}
	if a.At(0, 0, Height) != 0.25 {
		t.Error("clone must not share storage")
	}
	other, _ := New(Key{2, 1, 1}, 4)
	if other.Equal(a) {
		t.Error("different keys should not be equal")
	}
}

func TestChannelString(t *testing.T) {
	if Height.String() != "height" || AirHumidity.String() != "air_humidity" {
		t.Errorf("unexpected names %q %q", Height, AirHumidity)
	}
	if Channel(9).String() != "channel(9)" {
		t.Errorf("out of range channel = %q", Channel(9))
	}
}

func TestCodecRoundTrip(t *testing.T) {
	d, _ := New(Key{-7, 12, 5}, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			for c := Channel(0); c < NumChannels; c++ {
				d.Set(x, y, c, float32(x+y+int(c))/20)
			}
		}
	}
	b, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Equal(d) {
		t.Error("decoded chunk differs from original")
	}
	if got.IsDirty() {
		t.Error("decoded chunk should be clean")
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	d, _ := New(Key{1, 1, 1}, 2)
	good, _ := d.MarshalBinary()

	tests := []struct {
		name string
		data []byte
	}{
		{"short", good[:10]},
		{"magic", append([]byte("XXXX"), good[4:]...)},
		{"truncated", good[:len(good)-4]},
	}
	for _, tt := range tests {
		if _, err := Decode(tt.data); !errors.Is(err, ErrCorrupt) {
			t.Errorf("%s: Decode() error = %v, want ErrCorrupt", tt.name, err)
		}
	}
}
