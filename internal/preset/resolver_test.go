package preset

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"mp4", FormatMP4},
		{"MP4", FormatMP4},
		{".mp4", FormatMP4},
		{"mov", FormatMOV},
		{"qt", FormatMOV},
		{"webm", FormatWebM},
		{"mkv", FormatMKV},
		{"avi", FormatMP4},
		{"wmv", FormatMP4},
		{"3gp", FormatMP4},
		{"ogv", FormatWebM},
		{"definitely-not-a-container", FormatMP4},
		{"", FormatMP4},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   string
		want Quality
	}{
		{"high", QualityHigh},
		{"HIGH", QualityHigh},
		{"low", QualityLow},
		{"medium", QualityMedium},
		{"", QualityMedium},
		{"ultra-mega", QualityMedium},
	}

	for _, tt := range tests {
		if got := ParseQuality(tt.in); got != tt.want {
			t.Errorf("ParseQuality(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCandidatesEndInFallback(t *testing.T) {
	r := NewResolver()

	for _, q := range []Quality{QualityHigh, QualityMedium, QualityLow} {
		for _, f := range []Format{FormatMP4, FormatMOV, FormatWebM, FormatMKV} {
			candidates := r.Candidates(q, f)
			if len(candidates) == 0 {
				t.Fatalf("Candidates(%s, %s) is empty", q, f)
			}
			last := candidates[len(candidates)-1]
			if last != r.Fallback(f) {
				t.Errorf("Candidates(%s, %s) does not end in fallback, got %+v", q, f, last)
			}
		}
	}
}

func TestResolvePicksFirstCompatible(t *testing.T) {
	r := NewResolver()

	// Probe rejecting anything taller than 480 should skip the 1080/720
	// rungs of the high ladder.
	probe := func(p Preset) bool { return p.MaxHeight <= 480 }
	got := r.Resolve(QualityLow, FormatMP4, probe)
	if got.MaxHeight > 480 {
		t.Errorf("Resolve picked incompatible preset %+v", got)
	}

	// Probe rejecting everything falls back to the universal default.
	got = r.Resolve(QualityHigh, FormatMP4, func(Preset) bool { return false })
	if got != r.Fallback(FormatMP4) {
		t.Errorf("Resolve with rejecting probe = %+v, want fallback", got)
	}

	// Nil probe picks the most-preferred candidate.
	got = r.Resolve(QualityHigh, FormatMP4, nil)
	if got.MaxHeight != 1080 {
		t.Errorf("Resolve(high, mp4, nil).MaxHeight = %d, want 1080", got.MaxHeight)
	}
}

func TestWebMUsesVP9(t *testing.T) {
	r := NewResolver()
	p := r.Resolve(QualityMedium, FormatWebM, nil)
	if p.VideoCodec != "libvpx-vp9" || p.AudioCodec != "libopus" {
		t.Errorf("webm preset codecs = %s/%s, want libvpx-vp9/libopus", p.VideoCodec, p.AudioCodec)
	}
}
