package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iidmage/backoffice/internal/types/attachment"
)

const (
	maxFiles    = 12
	maxFileSize = 8 << 20 // 8MB
	maxTagLen   = 40
)

var (
	ErrTooManyFiles = errors.New("12 fichiers maximum par envoi")
	ErrFileTooLarge = errors.New("chaque fichier doit faire moins de 8 Mo")
	ErrBadMimeType  = errors.New("seules les images sont acceptées (jpeg, png, webp, gif, heic)")
	ErrTagRequired  = errors.New("le tag est obligatoire (40 caractères max)")
	ErrNoFiles      = errors.New("aucun fichier reçu")
)

// допустимые типы изображений, расширение берётся отсюда же
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

type Repository interface {
	CreateAttachment(ctx context.Context, a *attachment.Attachment) error
	ListAttachmentsByCommande(ctx context.Context, commandeID string) ([]attachment.Attachment, error)
}

type Service struct {
	repo      Repository
	uploadDir string
}

func NewService(repo Repository, uploadDir string) *Service {
	return &Service{repo: repo, uploadDir: uploadDir}
}

// Upload сохраняет файлы на диск и регистрирует вложения.
func (s *Service) Upload(ctx context.Context, commandeID, tag string, uploadedBy *string, files []*multipart.FileHeader) ([]attachment.Attachment, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || len(tag) > maxTagLen {
		return nil, ErrTagRequired
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > maxFiles {
		return nil, ErrTooManyFiles
	}
	for _, fh := range files {
		if fh.Size > maxFileSize {
			return nil, ErrFileTooLarge
		}
		if _, ok := imageExt[contentType(fh)]; !ok {
			return nil, ErrBadMimeType
		}
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}

	out := make([]attachment.Attachment, 0, len(files))
	for _, fh := range files {
		name := uuid.NewString() + imageExt[contentType(fh)]
		if err := s.saveFile(fh, filepath.Join(s.uploadDir, name)); err != nil {
			return nil, err
		}
		a := attachment.Attachment{
			ID:         uuid.NewString(),
			CommandeID: commandeID,
			Type:       tag,
			URL:        "/uploads/" + name,
			UploadedBy: uploadedBy,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repo.CreateAttachment(ctx, &a); err != nil {
			return nil, fmt.Errorf("create attachment: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, commandeID string) ([]attachment.Attachment, error) {
	return s.repo.ListAttachmentsByCommande(ctx, commandeID)
}

func (s *Service) saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, src)
	return err
}

func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
