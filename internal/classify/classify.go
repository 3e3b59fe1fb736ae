// Package classify derives the content kind of a message from its attributes.
// Classification is pure and total: every message gets exactly one kind, and
// malformed input degrades rather than errors.
package classify

import (
	"encoding/json"
	"strings"

	"github.com/ombrelle/switchboard/internal/models"
)

// Kind is the rendering/content kind of a message.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
	KindLocation Kind = "location"
	KindText     Kind = "text"
)

// ImageSentinel is the auto-generated placeholder body attached to image
// messages by the gateway. A body equal to it carries no independent content.
const ImageSentinel = "[Image]"

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

var audioExts = map[string]bool{
	"mp3": true, "ogg": true, "wav": true, "m4a": true,
}

// Result is the classification of a single message.
type Result struct {
	Kind Kind

	// Latitude and Longitude hold the parsed coordinates when Kind is
	// KindLocation and the payload parsed. They preserve the payload's
	// textual form so sentinel comparison never round-trips through floats.
	Latitude  string
	Longitude string

	// RawLocation holds the unparsed payload when Kind is KindLocation but
	// the payload could not be parsed. The message still renders, with the
	// raw string shown in place of a map preview.
	RawLocation string

	// SuppressCaption is set when the body is a gateway-generated sentinel
	// that duplicates the rich preview and must not render as a caption.
	SuppressCaption bool
}

// locationPayload is the structured form of a location attachment.
type locationPayload struct {
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

// Classify determines the content kind of a message. First match wins:
// image extension, audio extension, other media without location, location,
// plain text.
func Classify(msg models.Message) Result {
	ext := mediaExt(msg.MediaURL)
	hasLocation := msg.LocationJSON != ""

	switch {
	case imageExts[ext]:
		return Result{
			Kind:            KindImage,
			SuppressCaption: msg.Body == ImageSentinel,
		}
	case audioExts[ext]:
		return Result{Kind: KindAudio}
	case msg.MediaURL != "" && !hasLocation:
		return Result{Kind: KindDocument}
	case hasLocation:
		return classifyLocation(msg)
	default:
		return Result{Kind: KindText}
	}
}

// classifyLocation parses the location payload, degrading to the raw string
// when it does not parse. Never fails.
func classifyLocation(msg models.Message) Result {
	var loc locationPayload
	dec := json.NewDecoder(strings.NewReader(msg.LocationJSON))
	dec.UseNumber()
	if err := dec.Decode(&loc); err != nil || loc.Latitude == "" || loc.Longitude == "" {
		return Result{Kind: KindLocation, RawLocation: msg.LocationJSON}
	}

	sentinel := LocationSentinel(loc.Latitude.String(), loc.Longitude.String())
	return Result{
		Kind:            KindLocation,
		Latitude:        loc.Latitude.String(),
		Longitude:       loc.Longitude.String(),
		SuppressCaption: msg.Body == sentinel,
	}
}

// LocationSentinel returns the gateway's auto-generated body for a location
// message with the given coordinates.
func LocationSentinel(lat, long string) string {
	return "[LOCATION: " + lat + "," + long + "]"
}

// mediaExt extracts the lowercased extension from a media URL, ignoring any
// query string or fragment.
func mediaExt(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	i := strings.LastIndex(url, ".")
	if i < 0 || i == len(url)-1 {
		return ""
	}
	ext := strings.ToLower(url[i+1:])
	if strings.Contains(ext, "/") {
		return ""
	}
	return ext
}
