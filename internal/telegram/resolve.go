package telegram

import (
	"context"
	"net/http"

	"github.com/flemzord/tgbridge/pkg/message"
)

// Resolver turns Telegram file metadata into attachments with download URLs.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver that calls getFile through client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve calls getFile for meta["file_id"] and wraps the download URL in
// an attachment of the given kind carrying meta as raw metadata.
func (r *Resolver) Resolve(ctx context.Context, kind message.AttachmentKind, meta map[string]any) (message.Attachment, error) {
	fileID := str(meta["file_id"])

	resp, err := r.client.Send(ctx, "getFile", nil, map[string]any{"file_id": fileID})
	if err != nil {
		return message.Attachment{}, &AttachmentError{Kind: kind, FileID: fileID, Description: err.Error(), Err: err}
	}

	env, err := DecodeResult[map[string]any](resp)
	if err != nil {
		return message.Attachment{}, &AttachmentError{Kind: kind, FileID: fileID, Description: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK || !env.OK {
		description := env.Description
		if description == "" {
			description = http.StatusText(resp.StatusCode)
		}
		return message.Attachment{}, &AttachmentError{Kind: kind, FileID: fileID, Description: description}
	}

	filePath := str(env.Result["file_path"])
	if filePath == "" {
		return message.Attachment{}, &AttachmentError{Kind: kind, FileID: fileID, Description: "getFile returned no file_path"}
	}

	downloadURL := r.client.FileURL(filePath)
	raw := rawJSON(meta)
	switch kind {
	case message.KindImage:
		return message.NewImage(downloadURL, raw), nil
	case message.KindVideo:
		return message.NewVideo(downloadURL, raw), nil
	case message.KindAudio:
		return message.NewAudio(downloadURL, raw), nil
	default:
		return message.NewFile(downloadURL, raw), nil
	}
}

// largestPhoto returns the size with the greatest width*height; the first
// of equally large sizes wins.
func largestPhoto(sizes []any) map[string]any {
	var (
		best     map[string]any
		bestArea float64 = -1
	)
	for _, s := range sizes {
		size := object(s)
		if size == nil {
			continue
		}
		w, _ := number(size["width"])
		h, _ := number(size["height"])
		if area := w * h; area > bestArea {
			best, bestArea = size, area
		}
	}
	return best
}
