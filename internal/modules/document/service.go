package document

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"

	"brokercrm/internal/domain"
	"brokercrm/internal/modules/audit"
)

const maxFileSize = 50 * 1024 * 1024 // 50 MB

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file is too large")
)

type Repository interface {
	Create(ctx context.Context, d *domain.Document) error
	ListByDeal(ctx context.Context, dealID int64) ([]domain.Document, error)
	UpdateFolder(ctx context.Context, id int64, folderID string) error
}

type AuditRecorder interface {
	Record(ctx context.Context, objectType, objectID, action, objectName, description string, actorID *int64)
}

type Service struct {
	docs    Repository
	storage Storage
	auditor AuditRecorder
}

func NewService(docs Repository, storage Storage, auditor AuditRecorder) *Service {
	return &Service{docs: docs, storage: storage, auditor: auditor}
}

// Upload stores the file in the deal's folder and records a document row.
func (s *Service) Upload(ctx context.Context, dealID, actorID int64, fileHeader *multipart.FileHeader) (*domain.Document, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > maxFileSize {
		return nil, ErrFileTooLarge
	}

	folderID, err := s.storage.EnsureFolder(ctx, fmt.Sprintf("deal-%d", dealID))
	if err != nil {
		return nil, err
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	info, err := s.storage.Upload(ctx, folderID, f, fileHeader.Filename, mimeType)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		DealID:     dealID,
		Name:       info.Name,
		MimeType:   info.MimeType,
		Size:       info.Size,
		FileID:     info.ID,
		FolderID:   folderID,
		UploadedBy: actorID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.ObjectDocument, strconv.FormatInt(doc.ID, 10),
		audit.ActionCreate, doc.Name, "", &actorID)
	return doc, nil
}

func (s *Service) ListByDeal(ctx context.Context, dealID int64) ([]domain.Document, error) {
	return s.docs.ListByDeal(ctx, dealID)
}

// Move relocates a stored file to another deal's folder and keeps the
// document row in sync.
func (s *Service) Move(ctx context.Context, doc *domain.Document, destDealID int64) error {
	folderID, err := s.storage.EnsureFolder(ctx, fmt.Sprintf("deal-%d", destDealID))
	if err != nil {
		return err
	}
	if err := s.storage.Move(ctx, doc.FileID, folderID); err != nil {
		return err
	}
	return s.docs.UpdateFolder(ctx, doc.ID, folderID)
}
