package cli

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
)

// Attach uploads a local file (ticket, booking confirmation) and records it
// on a trip.
func (a *App) Attach(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Trip id", os.Stdout)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Path to file", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Could not read file: %s", err.Error())
		return err
	}

	fileName := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att, err := a.attachments.Attach(ctx, tripID, fileName, contentType, data)
	if err != nil {
		log.Printf("Could not attach file: %s", err.Error())
		return err
	}
	fmt.Println("Attached:", att.Name, "as", att.StorageKey)
	return nil
}

// Download prints a short-lived download URL for an attachment.
func (a *App) Download(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Storage key", os.Stdout)
	if err != nil {
		return err
	}
	url, err := a.attachments.DownloadURL(ctx, key)
	if err != nil {
		log.Printf("Could not get download url: %s", err.Error())
		return err
	}
	fmt.Println(url)
	return nil
}
