package crosschat

import (
	"context"
	"io"
	"net/http"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/nameless-bot/nameless/ctxzap"
)

// Attachments above the upload limit of a boostless guild are dropped
// rather than failing the whole relay.
const filesizeLimit = 8 << 20

// mirrorAttachments downloads the origin message's attachments so they
// can be re-uploaded at every destination. Failures drop the single
// attachment only.
func (s *Service) mirrorAttachments(ctx context.Context, attachments []discord.Attachment) attachmentBlobs {
	log := ctxzap.Extract(ctx)

	var blobs attachmentBlobs
	for _, att := range attachments {
		if att.Size > filesizeLimit {
			log.With("filename", att.Filename, "size", att.Size).
				Debug("attachment over the size limit, skipping")
			continue
		}

		data, err := downloadFile(ctx, att.URL)
		if err != nil {
			log.With("filename", att.Filename, "error", err).
				Warn("failed to mirror an attachment")
			continue
		}

		blobs = append(blobs, attachmentBlob{name: att.Filename, data: data})
	}

	return blobs
}

func downloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, filesizeLimit))
}
