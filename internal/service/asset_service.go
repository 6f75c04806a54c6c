package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

// AssetService manages the media library: files uploaded ahead of time that
// later originate posts.
type AssetService interface {
	Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]int64, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
}

type assetService struct {
	cfg     cfg.Config
	ma      repository.MediaAssetRepository
	storage ObjectStorage
}

func NewAssetService(cfg cfg.Config, ma repository.MediaAssetRepository, storage ObjectStorage) AssetService {
	return &assetService{
		cfg:     cfg,
		ma:      ma,
		storage: storage,
	}
}

func (s *assetService) Upload(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]int64, error) {
	if len(files) == 0 {
		err := errors.New("no files provided")
		slog.Info(err.Error())
		return nil, err
	}

	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	var assetIDs []int64
	for _, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening file: %w", err)
		}
		defer fileContent.Close()

		fileBytes, err := io.ReadAll(fileContent)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return nil, fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		key, err := gonanoid.New()
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		if err := s.storage.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
			return nil, fmt.Errorf("error uploading file: %w", err)
		}

		ma := models.MediaAsset{
			UserID:    userID,
			FileName:  file.Filename,
			FileType:  fileType.MIME.Value,
			FileSize:  int64(len(fileBytes)),
			FileURL:   fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, key),
			ObjectKey: key,
		}

		assetID, err := s.ma.Create(ctx, nil, &ma)
		if err != nil {
			return nil, fmt.Errorf("error saving media asset: %w", err)
		}
		assetIDs = append(assetIDs, assetID)
	}

	return assetIDs, nil
}

func (s *assetService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	assets, err := s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing media assets")
	}
	return assets, nil
}
