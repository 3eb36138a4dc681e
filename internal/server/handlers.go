package server

import (
	"net/http"
	"strings"

	"github.com/shouni/image-studio-kit/pkg/domain"
	"github.com/shouni/image-studio-kit/pkg/settings"
)

const (
	headerAPIKey   = "X-API-Key"
	headerBaseURL  = "X-Base-URL"
	headerModel    = "X-Model"
	headerProvider = "X-Provider"
)

type cardsRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type textToImageRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt"`
	NumberOfImages int    `json:"numberOfImages"`
	AspectRatio    string `json:"aspectRatio"`
}

type imageToImageRequest struct {
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
}

type styleInspirationRequest struct {
	Prompt    string `json:"prompt"`
	Reference string `json:"reference"`
	Strength  string `json:"strength"`
}

type inpaintingRequest struct {
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
	Mask   string `json:"mask"`
}

type comicStripRequest struct {
	Story          string `json:"story"`
	Style          string `json:"style"`
	NumberOfImages int    `json:"numberOfImages"`
}

type panelEditRequest struct {
	Panel  string `json:"panel"`
	Prompt string `json:"prompt"`
}

type videoScriptsRequest struct {
	Story  string   `json:"story"`
	Images []string `json:"images"`
}

type imagesResponse struct {
	Images []domain.GeneratedImage `json:"images"`
}

// credentials はヘッダーで指定された値を優先し、残りを保存済み設定と環境の既定値で補います。
// 保存済み設定は同じプロバイダー向けのものだけを使います。
func (s *Server) credentials(r *http.Request) (domain.Credentials, error) {
	stored, err := s.store.Load()
	if err != nil {
		return domain.Credentials{}, err
	}

	provider := s.defaults.Provider.Normalize()
	if v := strings.TrimSpace(r.Header.Get(headerProvider)); v != "" {
		provider = domain.Provider(strings.ToLower(v)).Normalize()
	}
	creds, _ := settings.Resolve(stored, s.providerDefaults(provider))

	if v := strings.TrimSpace(r.Header.Get(headerAPIKey)); v != "" {
		creds.APIKey = v
	}
	if v := strings.TrimSpace(r.Header.Get(headerBaseURL)); v != "" {
		creds.BaseURL = v
	}
	if v := strings.TrimSpace(r.Header.Get(headerModel)); v != "" {
		creds.Model = v
	}
	return creds, nil
}

// providerDefaults はプロバイダーの既定値を返します。モデルが空なら Generator の既定モデルになります。
func (s *Server) providerDefaults(p domain.Provider) domain.Credentials {
	if p == s.defaults.Provider.Normalize() {
		return s.defaults
	}
	if s.defaultsFor != nil {
		return s.defaultsFor(p)
	}
	return domain.Credentials{Provider: p}
}

// prepare はリクエスト本文の読み込みと Credentials の解決をまとめて行います。
func (s *Server) prepare(w http.ResponseWriter, r *http.Request, body any) (domain.Credentials, bool) {
	if body != nil {
		if err := decodeJSON(w, r, body); err != nil {
			s.writeError(w, r, err)
			return domain.Credentials{}, false
		}
	}
	creds, err := s.credentials(r)
	if err != nil {
		s.writeError(w, r, err)
		return domain.Credentials{}, false
	}
	return creds, true
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	var req cardsRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	style, err := domain.ParseStyle(req.Style)
	if err != nil {
		s.writeError(w, r, invalidParam(err))
		return
	}

	images, err := s.studio.GenerateIllustratedCards(r.Context(), creds, domain.IllustratedCardsRequest{Prompt: req.Prompt, Style: style})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleTextToImage(w http.ResponseWriter, r *http.Request) {
	var req textToImageRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	ratio, err := domain.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		s.writeError(w, r, invalidParam(err))
		return
	}

	images, err := s.studio.GenerateTextToImage(r.Context(), creds, domain.TextToImageRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		NumberOfImages: req.NumberOfImages,
		AspectRatio:    ratio,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleImageToImage(w http.ResponseWriter, r *http.Request) {
	var req imageToImageRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	files, err := s.loader.LoadAll(r.Context(), req.Images)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	images, err := s.studio.GenerateFromImageAndPrompt(r.Context(), creds, domain.ImageToImageRequest{Prompt: req.Prompt, Files: files})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleStyleInspiration(w http.ResponseWriter, r *http.Request) {
	var req styleInspirationRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	strength, err := domain.ParseStrength(req.Strength)
	if err != nil {
		s.writeError(w, r, invalidParam(err))
		return
	}
	ref, err := s.loadOptional(r, req.Reference)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	images, err := s.studio.GenerateWithStyleInspiration(r.Context(), creds, domain.StyleInspirationRequest{
		Reference: ref,
		Prompt:    req.Prompt,
		Strength:  strength,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleInpainting(w http.ResponseWriter, r *http.Request) {
	var req inpaintingRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	img, err := s.loadOptional(r, req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mask, err := s.loadOptional(r, req.Mask)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	images, err := s.studio.GenerateInpainting(r.Context(), creds, domain.InpaintingRequest{Prompt: req.Prompt, Image: img, Mask: mask})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Images: images})
}

func (s *Server) handleComicStrip(w http.ResponseWriter, r *http.Request) {
	var req comicStripRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	style, err := domain.ParseStyle(req.Style)
	if err != nil {
		s.writeError(w, r, invalidParam(err))
		return
	}

	strip, err := s.studio.GenerateComicStrip(r.Context(), creds, domain.ComicStripRequest{
		Story:          req.Story,
		Style:          style,
		NumberOfImages: req.NumberOfImages,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, strip)
}

func (s *Server) handlePanelEdit(w http.ResponseWriter, r *http.Request) {
	var req panelEditRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}

	img, err := s.studio.EditComicPanel(r.Context(), creds, domain.PanelEditRequest{
		Panel:  domain.GeneratedImage{Src: req.Panel},
		Prompt: req.Prompt,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.GeneratedImage{"image": img})
}

func (s *Server) handleVideoScripts(w http.ResponseWriter, r *http.Request) {
	var req videoScriptsRequest
	creds, ok := s.prepare(w, r, &req)
	if !ok {
		return
	}
	panels := make([]domain.GeneratedImage, 0, len(req.Images))
	for _, src := range req.Images {
		panels = append(panels, domain.GeneratedImage{Src: src})
	}

	scripts, err := s.studio.GenerateVideoScripts(r.Context(), creds, domain.VideoScriptRequest{Story: req.Story, Images: panels})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"scripts": scripts})
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.prepare(w, r, nil)
	if !ok {
		return
	}
	if err := s.studio.GenerateVideo(r.Context(), creds); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.prepare(w, r, nil)
	if !ok {
		return
	}
	models, err := s.studio.ListAvailableImageModels(r.Context(), creds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

// loadOptional は空の参照を空の ImageFile として返し、入力不足の判定を Generator に任せます。
func (s *Server) loadOptional(r *http.Request, ref string) (domain.ImageFile, error) {
	if strings.TrimSpace(ref) == "" {
		return domain.ImageFile{}, nil
	}
	return s.loader.Load(r.Context(), ref)
}

func invalidParam(err error) error {
	return domain.NewError(domain.KindValidation, msgBadRequest, err)
}
