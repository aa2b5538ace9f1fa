package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cgmlens/internal/modules/readings/domain"
	readingsout "cgmlens/internal/modules/readings/port/out"
	"cgmlens/internal/platform/clock"
	"cgmlens/internal/platform/id"
	"cgmlens/internal/platform/slug"
)

type UploadService struct {
	clock     clock.Clock
	idGen     id.Generator
	parser    readingsout.ExportParser
	store     readingsout.UploadStore
	projector readingsout.UploadIndexProjector
}

func NewUploadService(clock clock.Clock, idGen id.Generator, parser readingsout.ExportParser, store readingsout.UploadStore, projector readingsout.UploadIndexProjector) *UploadService {
	return &UploadService{clock: clock, idGen: idGen, parser: parser, store: store, projector: projector}
}

func (s *UploadService) Import(ctx context.Context, path, title, deviceID string, intervalMin float64) (domain.Upload, error) {
	if strings.TrimSpace(path) == "" {
		return domain.Upload{}, fmt.Errorf("export path is required")
	}
	if intervalMin <= 0 {
		return domain.Upload{}, fmt.Errorf("sampling interval must be positive, got %v min", intervalMin)
	}

	raw, err := s.parser.Parse(ctx, path)
	if err != nil {
		return domain.Upload{}, err
	}
	if len(raw) == 0 {
		return domain.Upload{}, fmt.Errorf("export %s contains no readings", path)
	}
	samples := domain.Normalize(raw, intervalMin)

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if deviceID == "" {
		deviceID = firstDeviceID(samples)
	}

	upload := domain.Upload{
		ID:          s.idGen.New(),
		Title:       title,
		Slug:        slug.Make(title),
		DeviceID:    deviceID,
		IntervalMin: intervalMin,
		Count:       len(samples),
		Readings:    domain.CountFinite(samples),
		StartAt:     samples[0].At,
		EndAt:       samples[len(samples)-1].At,
		AddedAt:     s.clock.Now(),
		SourcePath:  path,
	}
	if err := upload.Validate(); err != nil {
		return domain.Upload{}, err
	}

	notePath, err := s.store.Save(ctx, domain.UploadDocument{Upload: upload, Samples: samples})
	if err != nil {
		return domain.Upload{}, err
	}
	upload.NotePath = notePath
	if err := s.projector.UpsertUpload(ctx, upload); err != nil {
		return domain.Upload{}, err
	}
	return upload, nil
}

func (s *UploadService) List(ctx context.Context) ([]domain.Upload, error) {
	return s.store.List(ctx)
}

func (s *UploadService) Get(ctx context.Context, uploadID string) (domain.Upload, error) {
	return s.store.FindByID(ctx, uploadID)
}

func (s *UploadService) Samples(ctx context.Context, uploadID string) (domain.Upload, []domain.Sample, error) {
	upload, err := s.store.FindByID(ctx, uploadID)
	if err != nil {
		return domain.Upload{}, nil, err
	}
	samples, err := s.store.LoadSamples(ctx, upload)
	if err != nil {
		return domain.Upload{}, nil, err
	}
	return upload, samples, nil
}

func (s *UploadService) Reindex(ctx context.Context) error {
	if err := s.projector.Reset(ctx); err != nil {
		return err
	}
	uploads, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, upload := range uploads {
		if err := s.projector.UpsertUpload(ctx, upload); err != nil {
			return err
		}
	}
	return nil
}

func firstDeviceID(samples []domain.Sample) string {
	for _, sample := range samples {
		if sample.DeviceID != "" {
			return sample.DeviceID
		}
	}
	return ""
}
