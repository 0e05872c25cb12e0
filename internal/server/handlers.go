package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/background"
	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/mask"
	"magic-eraser/pkg/colorutil"
)

// InpaintResponse is returned when the client asks for JSON.
type InpaintResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleInpaint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	src, err := formImage(r, "image")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	m, err := formImage(r, "mask")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	maskImg := mask.NormalizeForInpaint(mask.Scale(m.Image, src.Width(), src.Height()))

	inp := s.inpainter
	override, err := s.upstream(r)
	if err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	if override != nil {
		inp = override
	}

	result, err := inp.Inpaint(r.Context(), src, maskImg)
	if err != nil {
		s.fail(w, r, upstreamStatus(err), err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"image":  src.Name,
		"width":  src.Width(),
		"height": src.Height(),
	}).Info("Inpainted image")
	s.writeImage(w, r, result)
}

func (s *Server) handleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	src, err := formImage(r, "image")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	fx, err := s.effects(r)
	if err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	result, err := fx.Remove(r.Context(), src)
	if err != nil {
		s.fail(w, r, upstreamStatus(err), err)
		return
	}
	s.writeImage(w, r, result)
}

func (s *Server) handleBlurBackground(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	src, err := formImage(r, "image")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	intensity := float64(background.DefaultBlurIntensity)
	if v := r.FormValue("intensity"); v != "" {
		if intensity, err = strconv.ParseFloat(v, 64); err != nil || intensity < 0 || intensity > 100 {
			s.fail(w, r, http.StatusBadRequest, fmt.Errorf("intensity must be between 0 and 100"))
			return
		}
	}
	fx, err := s.effects(r)
	if err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	result, err := fx.Blur(r.Context(), src, intensity)
	if err != nil {
		s.fail(w, r, upstreamStatus(err), err)
		return
	}
	s.writeImage(w, r, result)
}

func (s *Server) handleReplaceBackground(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
		return
	}
	src, err := formImage(r, "image")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var rep background.Replacement
	if rep.Blend, err = eimage.ParseBlendMode(r.FormValue("blend")); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if _, _, ferr := r.FormFile("background"); ferr == nil {
		bg, err := formImage(r, "background")
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		rep.Background = bg.Image
	} else {
		rep.Color = r.FormValue("color")
		if rep.Color == "" {
			s.fail(w, r, http.StatusBadRequest, errors.New("color or background is required"))
			return
		}
		if _, err := colorutil.ParseHex(rep.Color); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
	}

	fx, err := s.effects(r)
	if err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	result, err := fx.Replace(r.Context(), src, rep)
	if err != nil {
		s.fail(w, r, upstreamStatus(err), err)
		return
	}
	s.writeImage(w, r, result)
}

// writeImage sends the encoded result, or a JSON data URL when the client
// accepts only JSON.
func (s *Server) writeImage(w http.ResponseWriter, r *http.Request, a *eimage.Asset) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		render.JSON(w, r, InpaintResponse{Success: true, ImageURL: a.DataURL()})
		return
	}
	w.Header().Set("Content-Type", a.MIMEType())
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	_, _ = w.Write(a.Data)
}

func formImage(r *http.Request, field string) (*eimage.Asset, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s", field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	a, err := eimage.Decode(hdr.Filename, data)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// upstreamStatus maps errors from the IOPaint server to a gateway status.
func upstreamStatus(err error) int {
	if errors.Is(err, inpaint.ErrMaskSize) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
