package chi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain"
	"github.com/kailas-cloud/stylist/internal/domain/user"
	"github.com/kailas-cloud/stylist/internal/imaging"
	"github.com/kailas-cloud/stylist/internal/logger"
)

const (
	maxUploadBody     = 64 << 20
	multipartMemory   = 32 << 20
	profileField      = "profile_photo"
	inspirationPrefix = "inspiration_images["
)

type recommendationError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CreateRecommendations handles POST /recommendations (multipart).
func (s *Server) CreateRecommendations(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.recommendationFailed(w, r, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	dir, err := s.requestUploadDir()
	if err != nil {
		s.recommendationFailed(w, r, err)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("Failed to remove upload dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	in := user.Input{
		AdditionalInfo: r.FormValue("additional_info"),
		Budget:         r.FormValue("budget"),
	}

	if fhs := r.MultipartForm.File[profileField]; len(fhs) > 0 {
		path, err := s.stageUpload(fhs[0], filepath.Join(dir, "profile.jpg"))
		if err != nil {
			s.recommendationFailed(w, r, fmt.Errorf("profile photo: %w", err))
			return
		}
		in.ProfilePhotoPath = path
	}

	for i, fh := range inspirationUploads(r.MultipartForm) {
		path, err := s.stageUpload(fh, filepath.Join(dir, fmt.Sprintf("inspiration_%d.jpg", i)))
		if err != nil {
			s.recommendationFailed(w, r, fmt.Errorf("inspiration image %d: %w", i, err))
			return
		}
		in.AestheticPhotoPaths = append(in.AestheticPhotoPaths, path)
	}

	log.Info("Generating recommendation",
		zap.Bool("profile_photo", in.HasProfilePhoto()),
		zap.Int("inspiration_images", len(in.AestheticPhotoPaths)),
	)

	writeJSON(w, http.StatusOK, s.recommendations.Generate(r.Context(), in))
}

func (s *Server) recommendationFailed(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Error("Recommendation request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, recommendationError{
		Success: false,
		Error:   err.Error(),
	})
}

// requestUploadDir creates a private staging directory for one request.
func (s *Server) requestUploadDir() (string, error) {
	base := s.uploadBase()
	if err := os.MkdirAll(base, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "req-")
	if err != nil {
		return "", fmt.Errorf("create request upload dir: %w", err)
	}
	return dir, nil
}

func (s *Server) uploadBase() string {
	if s.uploadDir != "" {
		return s.uploadDir
	}
	return filepath.Join(os.TempDir(), "stylist_uploads")
}

// stageUpload resizes an uploaded image and writes it as JPEG to dst.
func (s *Server) stageUpload(fh *multipart.FileHeader, dst string) (string, error) {
	if fh.Size > s.maxFileBytes {
		return "", fmt.Errorf("%s is %d bytes, limit %d: %w", fh.Filename, fh.Size, s.maxFileBytes, domain.ErrInvalidInput)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, s.maxFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.maxFileBytes {
		return "", fmt.Errorf("%s exceeds %d bytes: %w", fh.Filename, s.maxFileBytes, domain.ErrInvalidInput)
	}

	resized, err := imaging.ResizeToMax(raw, s.maxDimension)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, resized, 0o600); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return dst, nil
}

// inspirationUploads returns inspiration_images[N] files ordered by N.
func inspirationUploads(form *multipart.Form) []*multipart.FileHeader {
	type indexed struct {
		idx int
		key string
		fh  *multipart.FileHeader
	}

	var found []indexed
	for key, fhs := range form.File {
		if !strings.HasPrefix(key, inspirationPrefix) || len(fhs) == 0 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(key, inspirationPrefix), "]"))
		if err != nil {
			idx = -1
		}
		found = append(found, indexed{idx: idx, key: key, fh: fhs[0]})
	}

	slices.SortFunc(found, func(a, b indexed) int {
		if a.idx != b.idx {
			return a.idx - b.idx
		}
		return strings.Compare(a.key, b.key)
	})

	out := make([]*multipart.FileHeader, len(found))
	for i, f := range found {
		out[i] = f.fh
	}
	return out
}

// confinePaths rejects any path that does not resolve inside the upload dir.
func (s *Server) confinePaths(paths []string) error {
	base, err := filepath.Abs(s.uploadBase())
	if err != nil {
		return fmt.Errorf("resolve upload dir: %w", err)
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", p, domain.ErrInvalidInput)
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("path %q is outside the upload directory: %w", p, domain.ErrInvalidInput)
		}
	}
	return nil
}
