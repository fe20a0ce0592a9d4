package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"healthtrack/internal/app/commands"
	"healthtrack/internal/app/export"
	"healthtrack/internal/app/queries"
	domainreports "healthtrack/internal/domain/reports"
)

const (
	exportReportsKey = "reports.export"
	archiveExportKey = "reports.export.archive"
)

var ErrArchiveUnavailable = errors.New("reports: export archive storage is not configured")

type ExportReportsQuery struct {
	Owner domainreports.Owner
}

func (q ExportReportsQuery) Key() string { return exportReportsKey }

type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ExportReportsHandler struct {
	Reports domainreports.Repository
}

func (h *ExportReportsHandler) Handle(ctx context.Context, q ExportReportsQuery) (ExportFile, error) {
	if h.Reports == nil {
		return ExportFile{}, ErrRepositoryRequired
	}
	items, err := h.Reports.List(ctx, q.Owner)
	if err != nil {
		return ExportFile{}, err
	}
	data, err := export.CSV(items)
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{FileName: export.FileName, ContentType: export.ContentType, Data: data}, nil
}

// Uploader stores an object and returns a URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// ArchiveExportCommand uploads the owner's CSV export to object storage.
type ArchiveExportCommand struct {
	Owner domainreports.Owner
}

func (c ArchiveExportCommand) Key() string { return archiveExportKey }

type ArchiveExportResult struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
	Reports   int    `json:"reports"`
}

type ArchiveExportHandler struct {
	Reports  domainreports.Repository
	Uploader Uploader
	Now      func() time.Time
	Logger   *slog.Logger
}

func (h *ArchiveExportHandler) Handle(ctx context.Context, cmd ArchiveExportCommand) (*ArchiveExportResult, error) {
	if h.Reports == nil {
		return nil, ErrRepositoryRequired
	}
	if h.Uploader == nil {
		return nil, ErrArchiveUnavailable
	}
	items, err := h.Reports.List(ctx, cmd.Owner)
	if err != nil {
		return nil, err
	}
	data, err := export.CSV(items)
	if err != nil {
		return nil, err
	}
	key := archiveKey(cmd.Owner, h.now())
	url, err := h.Uploader.Upload(ctx, key, bytes.NewReader(data), export.ContentType)
	if err != nil {
		return nil, fmt.Errorf("reports: archive export: %w", err)
	}
	if h.Logger != nil {
		h.Logger.Info("export archived", "owner", cmd.Owner, "key", key, "reports", len(items))
	}
	return &ArchiveExportResult{URL: url, ObjectKey: key, Reports: len(items)}, nil
}

func (h *ArchiveExportHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func archiveKey(owner domainreports.Owner, at time.Time) string {
	scope := "guest"
	if !owner.IsGuest() {
		scope = string(owner)
	}
	return fmt.Sprintf("exports/%s/%s", scope, at.UTC().Format("20060102T150405Z")+"-"+export.FileName)
}

var _ queries.Handler[ExportReportsQuery, ExportFile] = (*ExportReportsHandler)(nil)

var _ commands.Handler[ArchiveExportCommand, *ArchiveExportResult] = (*ArchiveExportHandler)(nil)
