package message

import "encoding/json"

// Attachment is a flat union describing one piece of media or structured data
// carried by a message. The Kind field discriminates which fields are meaningful:
//
//   - image, video, audio, file: URL (and optionally Title)
//   - location: Latitude, Longitude
//   - contact: PhoneNumber, FirstName, LastName, UserID, VCard
//   - unresolved: Expected, Reason
//
// Raw keeps the platform metadata the attachment was built from.
type Attachment struct {
	Kind        AttachmentKind  `json:"kind"`
	URL         string          `json:"url,omitempty"`
	Title       string          `json:"title,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	VCard       string          `json:"vcard,omitempty"`
	Expected    AttachmentKind  `json:"expected,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// MarshalJSON implements json.Marshaler.
// Location attachments always include latitude/longitude (0 when unset);
// other kinds never do.
func (a Attachment) MarshalJSON() ([]byte, error) {
	type alias Attachment
	normalized := a

	if normalized.Kind == KindLocation {
		if normalized.Latitude == nil {
			zero := 0.0
			normalized.Latitude = &zero
		}
		if normalized.Longitude == nil {
			zero := 0.0
			normalized.Longitude = &zero
		}
	} else {
		normalized.Latitude = nil
		normalized.Longitude = nil
	}

	return json.Marshal(alias(normalized))
}

// NewImage creates an image attachment for a resolved download URL.
func NewImage(url string, raw json.RawMessage) Attachment {
	return Attachment{Kind: KindImage, URL: url, Raw: copyRaw(raw)}
}

// NewVideo creates a video attachment for a resolved download URL.
func NewVideo(url string, raw json.RawMessage) Attachment {
	return Attachment{Kind: KindVideo, URL: url, Raw: copyRaw(raw)}
}

// NewAudio creates an audio attachment for a resolved download URL.
func NewAudio(url string, raw json.RawMessage) Attachment {
	return Attachment{Kind: KindAudio, URL: url, Raw: copyRaw(raw)}
}

// NewFile creates a generic file attachment for a resolved download URL.
func NewFile(url string, raw json.RawMessage) Attachment {
	return Attachment{Kind: KindFile, URL: url, Raw: copyRaw(raw)}
}

// NewLocation creates a location attachment.
func NewLocation(lat, lon float64, raw json.RawMessage) Attachment {
	return Attachment{Kind: KindLocation, Latitude: &lat, Longitude: &lon, Raw: copyRaw(raw)}
}

// NewContact creates a contact attachment.
func NewContact(phone, firstName, lastName, userID, vcard string, raw json.RawMessage) Attachment {
	return Attachment{
		Kind:        KindContact,
		PhoneNumber: phone,
		FirstName:   firstName,
		LastName:    lastName,
		UserID:      userID,
		VCard:       vcard,
		Raw:         copyRaw(raw),
	}
}

// NewUnresolved records that an attachment of the expected kind could not be
// resolved, together with the reason.
func NewUnresolved(expected AttachmentKind, reason string) Attachment {
	return Attachment{Kind: KindUnresolved, Expected: expected, Reason: reason}
}

// WithTitle returns a copy of the attachment with the given title.
func (a Attachment) WithTitle(title string) Attachment {
	a.Title = title
	return a
}

// IsUnresolved reports whether the attachment is the failure variant.
func (a Attachment) IsUnresolved() bool {
	return a.Kind == KindUnresolved
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp
}
