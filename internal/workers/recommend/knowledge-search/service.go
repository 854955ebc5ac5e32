package knowledgesearch

import (
	"context"
	"encoding/base64"
	"errors"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/discovery"
	apperrors "pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
)

type Service struct {
	config    *Config
	backend   Backend
	artifacts artifacts.Sessions
	logger    logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:    config,
		backend:   deps.Backend,
		artifacts: deps.Artifacts,
		logger:    deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if missing := s.backend.Missing(); missing != "" {
		return nil, apperrors.NewServiceNotConfiguredError("knowledge search", missing)
	}

	answer, err := s.backend.Answer(ctx, input.Query)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("knowledge search", err)
		}
		return nil, apperrors.NewKnowledgeSearchFailedError(err)
	}

	out := &Output{
		AnswerText: answer.Text,
		References: make([]Reference, 0, len(answer.References)),
		Images:     s.saveAttachments(ctx, input.SessionID, answer.Attachments),
		Backend:    s.backend.Name(),
	}
	for _, ref := range answer.References {
		out.References = append(out.References, Reference{URI: discovery.PublicURI(ref.URI), Title: ref.Title})
	}

	s.logger.Info("Knowledge search answered", map[string]interface{}{
		"sessionId":  input.SessionID,
		"backend":    out.Backend,
		"references": len(out.References),
		"images":     len(out.Images),
	})
	return out, nil
}

// saveAttachments stores each inline image as a session artifact so only its
// name travels back to the process. A bad attachment is skipped.
func (s *Service) saveAttachments(ctx context.Context, sessionID string, attachments []discovery.Attachment) []ImageRef {
	refs := []ImageRef{}
	store := s.artifacts.Session(sessionID)
	for i, att := range attachments {
		if att.Data == "" || att.MimeType == "" {
			s.logger.Warn("Skipping incomplete search result attachment", map[string]interface{}{"index": i})
			continue
		}
		data, err := base64.StdEncoding.DecodeString(att.Data)
		if err != nil {
			s.logger.Warn("Skipping undecodable search result attachment", map[string]interface{}{"index": i, "error": err.Error()})
			continue
		}
		name := artifacts.SearchResultImageName(i, discovery.ImageExtension(att.MimeType))
		if err := store.SaveArtifact(ctx, name, data, att.MimeType); err != nil {
			s.logger.Warn("Failed to save search result image", map[string]interface{}{"artifact": name, "error": err.Error()})
			continue
		}
		refs = append(refs, ImageRef{ArtifactName: name, MimeType: att.MimeType})
	}
	return refs
}
