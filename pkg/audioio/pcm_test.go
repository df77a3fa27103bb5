package audioio

import (
	"math"
	"testing"
)

func TestBytesToSamples(t *testing.T) {
	data := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80, 0x01}
	got := BytesToSamples(data)

	want := []int16{0, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (odd trailing byte dropped)", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSamplesToBytes_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	got := BytesToSamples(SamplesToBytes(samples))
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestDownmix(t *testing.T) {
	tests := []struct {
		name     string
		samples  []int16
		channels int
		want     []int16
	}{
		{"mono passthrough", []int16{1, 2, 3}, 1, []int16{1, 2, 3}},
		{"stereo average", []int16{100, 200, -100, -300}, 2, []int16{150, -200}},
		{"partial frame dropped", []int16{10, 20, 30}, 2, []int16{15}},
		{"extremes do not overflow", []int16{32767, 32767}, 2, []int16{32767}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Downmix(tt.samples, tt.channels)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	got := ToFloat([]int16{0, 16384, -32768})
	want := []float64{0, 0.5, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestResample_SameRate(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != len(in) {
		t.Errorf("len = %d, want %d", len(out), len(in))
	}
}

func TestResample_Empty(t *testing.T) {
	out, err := Resample(nil, 48000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func rms(buf []float64) float64 {
	var sum float64
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func TestResample_Downsample(t *testing.T) {
	const amp = 0.5
	in := make([]float64, 4800)
	for i := range in {
		in[i] = amp * math.Sin(2*math.Pi*1000*float64(i)/48000)
	}

	out, err := Resample(in, 48000, 16000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != 1600 {
		t.Fatalf("len = %d, want 1600", len(out))
	}

	// The tail must carry signal, not padding.
	want := amp / math.Sqrt2
	if got := rms(out[1200:1592]); math.Abs(got-want)/want > 0.05 {
		t.Errorf("tail rms = %.4f, want %.4f within 5%%", got, want)
	}
	if got := rms(out[400:1200]); math.Abs(got-want)/want > 0.05 {
		t.Errorf("body rms = %.4f, want %.4f within 5%%", got, want)
	}
}

func TestResample_Upsample(t *testing.T) {
	in := make([]float64, 1600)
	for i := range in {
		in[i] = 0.25 * math.Sin(2*math.Pi*500*float64(i)/16000)
	}

	out, err := Resample(in, 16000, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != 4410 {
		t.Fatalf("len = %d, want 4410", len(out))
	}
	want := 0.25 / math.Sqrt2
	if got := rms(out[3300:4400]); math.Abs(got-want)/want > 0.05 {
		t.Errorf("tail rms = %.4f, want %.4f within 5%%", got, want)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		n    int
		want []float64
	}{
		{"exact", []float64{1, 2}, 2, []float64{1, 2}},
		{"truncate", []float64{1, 2, 3}, 2, []float64{1, 2}},
		{"pad", []float64{1}, 3, []float64{1, 0, 0}},
		{"empty", nil, 2, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(tt.in, tt.n)
			if len(got) != tt.n {
				t.Fatalf("len = %d, want %d", len(got), tt.n)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkBytesToSamples(b *testing.B) {
	data := make([]byte, 640)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BytesToSamples(data)
	}
}
