package console

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Adel-MESRATI/Nexus-AI/internal/domain"
	"github.com/Adel-MESRATI/Nexus-AI/internal/storage"
	"github.com/Adel-MESRATI/Nexus-AI/pkg/zip"
)

// Exporter writes images and history archives to a storage sink.
type Exporter struct {
	sink storage.Sink
	now  func() time.Time
}

// ExportResult lists where each history image and the archive were written.
type ExportResult struct {
	Images  []string
	Archive string
}

func NewExporter(sink storage.Sink, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{sink: sink, now: now}
}

func ImageFilename(id string) string {
	return fmt.Sprintf("nexus-ai-%s.png", id)
}

// Download writes one history image.
func (e *Exporter) Download(ctx context.Context, img domain.GeneratedImage) (string, error) {
	data, err := decodeImage(img)
	if err != nil {
		return "", err
	}
	return e.sink.Write(ctx, ImageFilename(img.ID), data)
}

// DownloadCurrent writes an image that has no history record, naming it by
// the current time.
func (e *Exporter) DownloadCurrent(ctx context.Context, imageData string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return "", fmt.Errorf("console: decode image: %w", err)
	}
	name := fmt.Sprintf("nexus-ai-%d.png", e.now().UnixMilli())
	return e.sink.Write(ctx, name, data)
}

// ExportHistory writes every image concurrently, then a zip holding all of
// them. Writes are not rolled back: when any image fails the archive is
// skipped and the returned result, alongside the error, lists the images
// that did reach the sink.
func (e *Exporter) ExportHistory(ctx context.Context, history []domain.GeneratedImage) (*ExportResult, error) {
	if len(history) == 0 {
		return nil, errors.New("console: history is empty")
	}
	assets := make([]zip.Asset, len(history))
	for i, img := range history {
		data, err := decodeImage(img)
		if err != nil {
			return nil, err
		}
		assets[i] = zip.Asset{Filename: ImageFilename(img.ID), Data: data, Modified: img.CreatedAt}
	}

	locations := make([]string, len(assets))
	group, gctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		group.Go(func() error {
			loc, err := e.sink.Write(gctx, asset.Filename, asset.Data)
			if err != nil {
				return err
			}
			locations[i] = loc
			return nil
		})
	}
	written := func() []string {
		return lo.Filter(locations, func(loc string, _ int) bool { return loc != "" })
	}
	if err := group.Wait(); err != nil {
		return &ExportResult{Images: written()}, err
	}

	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("nexus-ai-history-%d.zip", e.now().UnixMilli())
	archiveLoc, err := e.sink.Write(ctx, name, archive)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Images:  written(),
		Archive: archiveLoc,
	}, nil
}

func decodeImage(img domain.GeneratedImage) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.ImageData)
	if err != nil {
		return nil, fmt.Errorf("console: decode image %s: %w", img.ID, err)
	}
	return data, nil
}
