// Package message defines the platform-agnostic chat model shared by the
// Telegram adapter and the application that answers it. Inbound updates are
// normalized into IncomingMessage; replies are expressed as a Reply (plain
// Text, an OutgoingMessage with an optional attachment, or a Question with
// buttons).
package message

// AttachmentKind discriminates the variant stored in an Attachment.
type AttachmentKind string

// Supported attachment kinds. KindUnresolved marks a media attachment whose
// download URL could not be obtained.
const (
	KindImage      AttachmentKind = "image"
	KindVideo      AttachmentKind = "video"
	KindAudio      AttachmentKind = "audio"
	KindFile       AttachmentKind = "file"
	KindLocation   AttachmentKind = "location"
	KindContact    AttachmentKind = "contact"
	KindUnresolved AttachmentKind = "unresolved"
)

// Placeholder texts used as IncomingMessage.Text when the payload is not text.
const (
	PatternImage    = "%%%_IMAGE_%%%"
	PatternVideo    = "%%%_VIDEO_%%%"
	PatternAudio    = "%%%_AUDIO_%%%"
	PatternFile     = "%%%_FILE_%%%"
	PatternLocation = "%%%_LOCATION_%%%"
	PatternContact  = "%%%_CONTACT_%%%"
)

// Pattern returns the placeholder text for the kind, or "" for kinds without one.
func (k AttachmentKind) Pattern() string {
	switch k {
	case KindImage:
		return PatternImage
	case KindVideo:
		return PatternVideo
	case KindAudio:
		return PatternAudio
	case KindFile:
		return PatternFile
	case KindLocation:
		return PatternLocation
	case KindContact:
		return PatternContact
	default:
		return ""
	}
}

// IsMedia reports whether the kind is backed by a downloadable file.
func (k AttachmentKind) IsMedia() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindFile:
		return true
	}
	return false
}
