package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for media uploads.
var (
	ErrFileRequired        = errors.New("file required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// MaxIntroVideoBytes caps mentor intro videos.
const MaxIntroVideoBytes int64 = 50 << 20

const maxImageBytes int64 = 5 << 20

// Upload directories under the media root.
const (
	DirMentorVideos     = "mentor_videos"
	DirVideos           = "videos"
	DirCourseThumbnails = "course_thumbnails"
	DirVideoThumbnails  = "video_thumbnails"
)

// MediaKind selects the allow-list and size limit for an upload.
type MediaKind int

const (
	MediaIntroVideo MediaKind = iota
	MediaVideo
	MediaImage
)

var videoMIMETypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/x-msvideo": ".avi",
	"video/x-ms-wmv":  ".wmv",
}

var imageMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadRule struct {
	types    map[string]string
	maxBytes int64
}

// MediaService validates uploads and stores them on local disk. Returned
// paths are relative to the media root and use forward slashes.
type MediaService struct {
	root  string
	rules map[MediaKind]uploadRule
	now   func() time.Time
}

// NewMediaService creates a MediaService rooted at uploadDir.
func NewMediaService(uploadDir string, maxVideoBytes int64) *MediaService {
	return &MediaService{
		root: uploadDir,
		rules: map[MediaKind]uploadRule{
			MediaIntroVideo: {types: videoMIMETypes, maxBytes: MaxIntroVideoBytes},
			MediaVideo:      {types: videoMIMETypes, maxBytes: maxVideoBytes},
			MediaImage:      {types: imageMIMETypes, maxBytes: maxImageBytes},
		},
		now: time.Now,
	}
}

// Validate checks content type and size and returns the stored extension.
func (s *MediaService) Validate(header *multipart.FileHeader, kind MediaKind) (string, error) {
	if header == nil {
		return "", ErrFileRequired
	}
	rule := s.rules[kind]

	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(header.Header.Get("Content-Type"), ";", 2)[0]))
	ext, ok := rule.types[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(rule.types), ", "))
	}
	if header.Size > rule.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, rule.maxBytes)
	}
	return ext, nil
}

// SaveIntroVideo stores a mentor intro video as mentor_videos/<first>_<last>_intro<ext>.
func (s *MediaService) SaveIntroVideo(header *multipart.FileHeader, firstName, lastName string) (string, error) {
	ext, err := s.Validate(header, MediaIntroVideo)
	if err != nil {
		return "", err
	}
	base := strings.Trim(fold(firstName, '_')+"_"+fold(lastName, '_'), "_")
	if base == "" {
		base = "mentor"
	}
	return s.store(header, DirMentorVideos, base+"_intro", ext)
}

// SaveVideo stores a lesson video under videos/<YYYY-MM-DD>/.
func (s *MediaService) SaveVideo(header *multipart.FileHeader) (string, error) {
	ext, err := s.Validate(header, MediaVideo)
	if err != nil {
		return "", err
	}
	base := fold(strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)), '_')
	if base == "" {
		base = "video"
	}
	dir := path.Join(DirVideos, s.now().UTC().Format("2006-01-02"))
	return s.store(header, dir, base, ext)
}

// SaveImage stores a thumbnail under dir with a UUID filename.
func (s *MediaService) SaveImage(header *multipart.FileHeader, dir string) (string, error) {
	ext, err := s.Validate(header, MediaImage)
	if err != nil {
		return "", err
	}
	return s.store(header, dir, uuid.New().String(), ext)
}

// Remove deletes a stored file. Missing files are ignored.
func (s *MediaService) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(s.abs(relPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Root returns the media root directory.
func (s *MediaService) Root() string {
	return s.root
}

func (s *MediaService) abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}

// store writes the upload to relDir/base+ext, adding a short UUID suffix
// when the name is taken.
func (s *MediaService) store(header *multipart.FileHeader, relDir, base, ext string) (string, error) {
	if err := os.MkdirAll(s.abs(relDir), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := base + ext
	var dst *os.File
	for attempt := 0; ; attempt++ {
		dst, err = os.OpenFile(s.abs(path.Join(relDir, name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt >= 3 {
			return "", fmt.Errorf("create file: %w", err)
		}
		name = base + "_" + uuid.New().String()[:8] + ext
	}

	rel := path.Join(relDir, name)
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = s.Remove(rel)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = s.Remove(rel)
		return "", fmt.Errorf("close file: %w", err)
	}
	return rel, nil
}

func allowedTypes(types map[string]string) []string {
	out := make([]string, 0, len(types))
	for t := range types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
