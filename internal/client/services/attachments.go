package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/tripkeeper/internal/client/client"
	"github.com/dmitrijs2005/tripkeeper/internal/client/models"
	"github.com/dmitrijs2005/tripkeeper/internal/netx"
)

// AttachmentService uploads trip documents (tickets, boarding passes) to
// object storage via presigned URLs and records their metadata on the trip.
type AttachmentService interface {
	Attach(ctx context.Context, tripID, fileName, contentType string, data []byte) (*models.Attachment, error)
	DownloadURL(ctx context.Context, storageKey string) (string, error)
}

type attachmentService struct {
	client client.Client
}

func NewAttachmentService(c client.Client) AttachmentService {
	return &attachmentService{client: c}
}

// uploadToPresignedURL is a seam for tests.
var uploadToPresignedURL = netx.UploadToPresignedURL

// Attach uploads the file bytes and merges the attachment metadata into the
// trip document. The attachment becomes visible to collaborators through
// the shared trip record.
func (s *attachmentService) Attach(ctx context.Context, tripID, fileName, contentType string, data []byte) (*models.Attachment, error) {
	key, uploadURL, err := s.client.GetPresignedPutURL(ctx, fileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to get upload url: %w", err)
	}

	if err := uploadToPresignedURL(ctx, uploadURL, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload attachment: %w", err)
	}

	att := &models.Attachment{
		ID:          uuid.NewString(),
		Name:        fileName,
		StorageKey:  key,
		ContentType: contentType,
	}

	doc, err := s.client.GetDocument(ctx, models.TripDocPath(tripID))
	if err != nil {
		return nil, err
	}
	trip := models.DecodeTrip(doc.Fields)
	trip.Attachments = append(trip.Attachments, *att)

	attachments := make([]any, 0, len(trip.Attachments))
	for _, a := range trip.Attachments {
		attachments = append(attachments, map[string]any{
			"id":           a.ID,
			"name":         a.Name,
			"storage_key":  a.StorageKey,
			"content_type": a.ContentType,
		})
	}
	fields := map[string]any{"attachments": attachments}
	if _, err := s.client.SetDocument(ctx, models.TripDocPath(tripID), fields, true); err != nil {
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}
	return att, nil
}

func (s *attachmentService) DownloadURL(ctx context.Context, storageKey string) (string, error) {
	return s.client.GetPresignedGetURL(ctx, storageKey)
}
