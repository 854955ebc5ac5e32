package kyc

import (
	"context"
	stderrors "errors"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/errors"
)

// LoadDocument resolves the document a job points at. A document that cannot
// be found is returned as nil so extraction reports it as missing.
func LoadDocument(ctx context.Context, store artifacts.Store, inline *artifacts.InlineFile, name string) (*artifacts.InboundFile, error) {
	doc, err := artifacts.Resolve(ctx, store, inline, name)
	switch {
	case err == nil:
		return doc, nil
	case stderrors.Is(err, artifacts.ErrInvalidInline):
		return nil, errors.NewInputParsingFailedError(err)
	default:
		return nil, errors.NewArtifactStoreFailedError(err)
	}
}
