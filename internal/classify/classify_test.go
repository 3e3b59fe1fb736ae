package classify

import (
	"testing"

	"github.com/ombrelle/switchboard/internal/models"
)

// --- Kind priority tests ---

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
		want Kind
	}{
		{
			name: "jpg image",
			msg:  models.Message{MediaURL: "https://cdn.example.com/a.jpg"},
			want: KindImage,
		},
		{
			name: "uppercase extension",
			msg:  models.Message{MediaURL: "https://cdn.example.com/a.PNG"},
			want: KindImage,
		},
		{
			name: "webp image",
			msg:  models.Message{MediaURL: "https://cdn.example.com/sticker.webp"},
			want: KindImage,
		},
		{
			name: "ogg audio",
			msg:  models.Message{MediaURL: "https://cdn.example.com/voice.ogg"},
			want: KindAudio,
		},
		{
			name: "m4a audio",
			msg:  models.Message{MediaURL: "https://cdn.example.com/note.m4a"},
			want: KindAudio,
		},
		{
			name: "pdf document",
			msg:  models.Message{MediaURL: "https://cdn.example.com/invoice.pdf"},
			want: KindDocument,
		},
		{
			name: "media without extension",
			msg:  models.Message{MediaURL: "https://cdn.example.com/blob"},
			want: KindDocument,
		},
		{
			name: "location only",
			msg:  models.Message{LocationJSON: `{"latitude":1.29,"longitude":103.85}`},
			want: KindLocation,
		},
		{
			name: "unknown media with location goes to location",
			msg: models.Message{
				MediaURL:     "https://cdn.example.com/pin.bin",
				LocationJSON: `{"latitude":1.29,"longitude":103.85}`,
			},
			want: KindLocation,
		},
		{
			name: "image extension beats location",
			msg: models.Message{
				MediaURL:     "https://cdn.example.com/a.jpg",
				LocationJSON: `{"latitude":1.29,"longitude":103.85}`,
			},
			want: KindImage,
		},
		{
			name: "plain text",
			msg:  models.Message{Body: "hello"},
			want: KindText,
		},
		{
			name: "empty message",
			msg:  models.Message{},
			want: KindText,
		},
		{
			name: "query string ignored",
			msg:  models.Message{MediaURL: "https://cdn.example.com/a.jpg?token=abc.def"},
			want: KindImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.msg)
			if got.Kind != tt.want {
				t.Errorf("Classify() kind = %q, want %q", got.Kind, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	msg := models.Message{MediaURL: "https://cdn.example.com/a.jpg", Body: "[Image]"}
	first := Classify(msg)
	for i := 0; i < 5; i++ {
		if got := Classify(msg); got != first {
			t.Fatalf("Classify() not deterministic: %+v vs %+v", got, first)
		}
	}
}

// --- Sentinel suppression tests ---

func TestClassify_ImageSentinelSuppressed(t *testing.T) {
	msg := models.Message{MediaURL: "https://cdn.example.com/pic.jpeg", Body: "[Image]"}
	got := Classify(msg)
	if !got.SuppressCaption {
		t.Error("sentinel body should suppress the caption")
	}
}

func TestClassify_ImageRealCaptionKept(t *testing.T) {
	msg := models.Message{MediaURL: "https://cdn.example.com/pic.jpeg", Body: "our new office"}
	got := Classify(msg)
	if got.SuppressCaption {
		t.Error("real caption must not be suppressed")
	}
}

func TestClassify_LocationSentinelSuppressed(t *testing.T) {
	msg := models.Message{
		LocationJSON: `{"latitude":1.29,"longitude":103.85}`,
		Body:         "[LOCATION: 1.29,103.85]",
	}
	got := Classify(msg)
	if !got.SuppressCaption {
		t.Error("location sentinel body should suppress the caption")
	}
	if got.Latitude != "1.29" || got.Longitude != "103.85" {
		t.Errorf("coordinates = %q,%q", got.Latitude, got.Longitude)
	}
}

func TestClassify_LocationOtherBodyKept(t *testing.T) {
	msg := models.Message{
		LocationJSON: `{"latitude":1.29,"longitude":103.85}`,
		Body:         "meet me here",
	}
	if got := Classify(msg); got.SuppressCaption {
		t.Error("non-sentinel body must not be suppressed")
	}
}

// --- Malformed location tests ---

func TestClassify_MalformedLocationDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "1.29,103.85"},
		{"truncated", `{"latitude":1.29`},
		{"missing longitude", `{"latitude":1.29}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(models.Message{LocationJSON: tt.raw})
			if got.Kind != KindLocation {
				t.Fatalf("kind = %q, want %q", got.Kind, KindLocation)
			}
			if got.RawLocation != tt.raw {
				t.Errorf("RawLocation = %q, want %q", got.RawLocation, tt.raw)
			}
			if got.SuppressCaption {
				t.Error("malformed location must never suppress the caption")
			}
		})
	}
}

// --- Helper tests ---

func TestMediaExt(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"", ""},
		{"https://x/a.jpg", "jpg"},
		{"https://x/a.JPG?sig=1", "jpg"},
		{"https://x/archive.tar.gz", "gz"},
		{"https://x/noext", ""},
		{"https://x/trailingdot.", ""},
		{"https://x.example.com/path", ""},
	}
	for _, tt := range tests {
		if got := mediaExt(tt.url); got != tt.want {
			t.Errorf("mediaExt(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestLocationSentinel(t *testing.T) {
	if got := LocationSentinel("1.5", "103.2"); got != "[LOCATION: 1.5,103.2]" {
		t.Errorf("LocationSentinel = %q", got)
	}
}
