package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stylist/internal/domain/style"
	"github.com/kailas-cloud/stylist/internal/domain/user"
	"github.com/kailas-cloud/stylist/internal/logger"
)

const (
	actionGenerateStyleImage  = "generateStyleImage"
	actionGenerateSearchQuery = "generateSearchQuery"
	actionAnalyzeUserPhotos   = "analyzeUserPhotos"
)

type actionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type actionData struct {
	Recommendation *style.Response `json:"recommendation"`
	UserInput      *user.Input     `json:"userInput"`
	PhotoPaths     []string        `json:"photoPaths"`
}

func decodeAction(w http.ResponseWriter, r *http.Request) (string, actionData, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return "", actionData{}, false
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "Action is required", "")
		return "", actionData{}, false
	}

	var data actionData
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid action data", err.Error())
			return "", actionData{}, false
		}
	}
	return req.Action, data, true
}

// OpenAIAction handles POST /openai.
func (s *Server) OpenAIAction(w http.ResponseWriter, r *http.Request) {
	action, data, ok := decodeAction(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	fallbackMsg := "Failed to process OpenAI action: " + action

	switch action {
	case actionGenerateStyleImage:
		if data.Recommendation == nil {
			writeError(w, http.StatusBadRequest, "Recommendation data is required", "")
			return
		}
		url, err := s.images.GenerateDirect(ctx, *data.Recommendation)
		writeJSON(w, http.StatusOK, map[string]string{"image": s.imageOrPlaceholder(r, url, err)})

	case actionGenerateSearchQuery:
		if data.UserInput == nil {
			writeError(w, http.StatusBadRequest, "User input is required", "")
			return
		}
		in := *data.UserInput
		paths := append([]string{in.ProfilePhotoPath}, in.AestheticPhotoPaths...)
		if err := s.confinePaths(paths); err != nil {
			s.handleError(w, r, err, fallbackMsg)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"searchQuery": s.recommendations.Generate(ctx, in)})

	case actionAnalyzeUserPhotos:
		if data.PhotoPaths == nil {
			writeError(w, http.StatusBadRequest, "Photo paths array is required", "")
			return
		}
		if err := s.confinePaths(data.PhotoPaths); err != nil {
			s.handleError(w, r, err, fallbackMsg)
			return
		}
		attrs, err := s.recommendations.AnalyzePhotos(ctx, data.PhotoPaths)
		if err != nil {
			s.handleError(w, r, err, fallbackMsg)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"userAttributes": attrs})

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", action), "")
	}
}

// ReplicateAction handles POST /replicate.
func (s *Server) ReplicateAction(w http.ResponseWriter, r *http.Request) {
	action, data, ok := decodeAction(w, r)
	if !ok {
		return
	}

	switch action {
	case actionGenerateStyleImage:
		if data.Recommendation == nil {
			writeError(w, http.StatusBadRequest, "Recommendation data is required", "")
			return
		}
		url, err := s.images.Generate(r.Context(), *data.Recommendation)
		writeJSON(w, http.StatusOK, map[string]string{"image": s.imageOrPlaceholder(r, url, err)})

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown action: %s", action), "")
	}
}

// imageOrPlaceholder substitutes the placeholder path for any generation failure.
func (s *Server) imageOrPlaceholder(r *http.Request, url string, err error) string {
	if err != nil {
		logger.FromContext(r.Context()).Warn("Image generation failed, serving placeholder", zap.Error(err))
		return s.placeholder
	}
	return url
}
