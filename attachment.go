package reportview

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
)

// Phase is the loading phase of the attachment modal.
type Phase int

// Modal phases.
const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
	PhaseUnsupported
)

// Modal is the shared attachment modal. Metadata is populated when the modal
// opens; Content arrives later through AttachmentLoaded.
type Modal struct {
	Open    bool
	Ref     AttachmentRef
	Token   uint64 // identifies the retrieval whose result may fill Content
	Phase   Phase
	Content *AttachmentContent
	Err     error
}

// DownloadPath returns the download target, available as soon as the modal
// opens regardless of content type or loading phase.
func (m Modal) DownloadPath() string {
	return m.Ref.Path()
}

// AttachmentContent is decoded attachment content.
type AttachmentContent struct {
	Type ContentType
	Data []byte

	// Plaintext.
	Text string

	// Image.
	MIMEType   string
	Format     string // empty when no registered decoder recognized the data
	Width      int
	Height     int
	DisplayRef string // data URI usable as an image source
}

// ErrUnsupportedContentType is returned for attachments that are neither
// plaintext nor image.
var ErrUnsupportedContentType = errors.New("unsupported attachment type")

// RetrievalError wraps a failed attachment retrieval.
type RetrievalError struct {
	Path string
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve %s: %v", e.Path, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// LoadAttachment retrieves ref through f and decodes it according to its
// content type. Unsupported types fail without retrieving anything.
func LoadAttachment(ctx context.Context, f Fetcher, ref AttachmentRef) (*AttachmentContent, error) {
	if !ref.ContentType.Supported() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, ref.ContentType)
	}

	data, err := f.Fetch(ctx, ref.Path())
	if err != nil {
		return nil, &RetrievalError{Path: ref.Path(), Err: err}
	}

	if ref.ContentType == ContentPlaintext {
		return &AttachmentContent{Type: ContentPlaintext, Data: data, Text: string(data)}, nil
	}
	return decodeImage(data), nil
}

func decodeImage(data []byte) *AttachmentContent {
	c := &AttachmentContent{Type: ContentImage, Data: data}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		c.Format = format
		c.Width = cfg.Width
		c.Height = cfg.Height
	}

	c.MIMEType = http.DetectContentType(data)
	if !strings.HasPrefix(c.MIMEType, "image/") && c.Format != "" {
		c.MIMEType = "image/" + c.Format
	}
	c.DisplayRef = "data:" + c.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return c
}

func (s *State) openModal(ref AttachmentRef) []Effect {
	var effects []Effect
	if s.Modal.Open && s.Modal.Phase == PhaseLoading {
		effects = append(effects, CancelFetch{Token: s.Modal.Token})
	}

	s.LastToken++
	s.Modal = Modal{
		Open:  true,
		Ref:   ref,
		Token: s.LastToken,
		Phase: PhaseLoading,
	}

	if !ref.ContentType.Supported() {
		s.Modal.Phase = PhaseUnsupported
		s.Modal.Err = fmt.Errorf("%w: %q", ErrUnsupportedContentType, ref.ContentType)
		return effects
	}
	return append(effects, FetchAttachment{Token: s.LastToken, Ref: ref})
}

func (s *State) attachmentLoaded(ev AttachmentLoaded) ([]Effect, error) {
	if !s.Modal.Open || s.Modal.Phase != PhaseLoading || ev.Token != s.Modal.Token {
		return nil, fmt.Errorf("%w: token %d, modal token %d", ErrStaleResponse, ev.Token, s.Modal.Token)
	}

	switch {
	case errors.Is(ev.Err, ErrUnsupportedContentType):
		s.Modal.Phase = PhaseUnsupported
		s.Modal.Err = ev.Err
	case ev.Err != nil:
		s.Modal.Phase = PhaseFailed
		s.Modal.Err = ev.Err
	default:
		s.Modal.Phase = PhaseLoaded
		s.Modal.Content = ev.Content
	}
	return nil, nil
}

func (s *State) closeModal() []Effect {
	var effects []Effect
	if s.Modal.Open && s.Modal.Phase == PhaseLoading {
		effects = append(effects, CancelFetch{Token: s.Modal.Token})
	}
	s.Modal = Modal{}
	return effects
}
