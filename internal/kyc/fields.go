// Package kyc screens, extracts and cross-checks the identity documents an
// owner uploads before a purchase is released.
package kyc

import (
	"context"
	stderrors "errors"
	"strings"

	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/docai"
	"pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"
)

type DocumentClass string

const (
	DriversLicense DocumentClass = "drivers_license"
	BankStatement  DocumentClass = "bank_statement"
)

// Label is the human wording used in messages.
func (c DocumentClass) Label() string {
	switch c {
	case DriversLicense:
		return "driver's license"
	case BankStatement:
		return "bank statement"
	}
	return string(c)
}

// Entity types produced by the license and bank statement processors.
const (
	EntityGivenNames    = "Given Names"
	EntityFamilyName    = "Family Name"
	EntityAddress       = "Address"
	EntityClientName    = "client_name"
	EntityClientAddress = "client_address"
)

var supportedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

func IsSupportedMediaType(mediaType string) bool {
	return supportedMediaTypes[mediaType]
}

// ExtractedFields is the identity data read from one document. Empty strings
// mean the field was not found.
type ExtractedFields struct {
	DocumentClass DocumentClass `json:"documentClass" jsonschema:"enum=drivers_license,enum=bank_statement"`
	GivenName     string        `json:"givenName,omitempty"`
	FamilyName    string        `json:"familyName,omitempty"`
	FullName      string        `json:"fullName,omitempty"`
	Address       string        `json:"address,omitempty"`
}

// Empty reports the hard extraction failure: neither a name nor an address.
func (f *ExtractedFields) Empty() bool {
	return f.FullName == "" && f.Address == ""
}

// DocumentProcessor runs a document through an extraction processor.
type DocumentProcessor interface {
	Process(ctx context.Context, processor string, content []byte, mimeType string) ([]docai.Entity, error)
}

// Processors holds the configured processor resource names per purpose.
type Processors struct {
	IDProofing     string
	DriversLicense string
	BankStatement  string
}

func (p Processors) forClass(class DocumentClass) string {
	switch class {
	case DriversLicense:
		return p.DriversLicense
	case BankStatement:
		return p.BankStatement
	}
	return ""
}

type Extractor struct {
	processor  DocumentProcessor
	processors Processors
	signals    []string
}

// NewExtractor builds an extractor. An empty signals list screens for the
// identity-document signal only.
func NewExtractor(processor DocumentProcessor, processors Processors, signals []string) *Extractor {
	if len(signals) == 0 {
		signals = []string{SignalIdentityDocument}
	}
	return &Extractor{processor: processor, processors: processors, signals: signals}
}

// Extract reads the identity fields of one document.
func (e *Extractor) Extract(ctx context.Context, class DocumentClass, doc *artifacts.InboundFile) (*ExtractedFields, error) {
	processor := e.processors.forClass(class)
	entities, err := e.process(ctx, class, processor, doc)
	if err != nil {
		return nil, err
	}

	var fields *ExtractedFields
	switch class {
	case DriversLicense:
		fields = FieldsFromLicense(entities)
	case BankStatement:
		fields = FieldsFromBankStatement(entities)
	default:
		return nil, errors.NewValidationFailedError("unknown document class " + string(class))
	}

	if fields.Empty() {
		return nil, errors.NewExtractionEmptyError(class.Label())
	}
	return fields, nil
}

// ExtractLicense extracts a driver's license that has already been screened.
// An unscreened or fraudulent license is never sent for extraction.
func (e *Extractor) ExtractLicense(ctx context.Context, screen *FraudSignalResult, doc *artifacts.InboundFile) (*ExtractedFields, error) {
	if screen == nil {
		return nil, errors.NewValidationFailedError("the driver's license has not been fraud screened")
	}
	if screen.IsFraudulent {
		return nil, errors.NewFraudulentDocumentError(screen.Reasons)
	}
	return e.Extract(ctx, DriversLicense, doc)
}

func (e *Extractor) process(ctx context.Context, class DocumentClass, processor string, doc *artifacts.InboundFile) ([]docai.Entity, error) {
	if doc == nil || len(doc.Data) == 0 {
		return nil, errors.NewDocumentMissingError(class.Label())
	}
	if !IsSupportedMediaType(doc.MediaType) {
		return nil, errors.NewUnsupportedMediaTypeError(doc.MediaType)
	}
	if processor == "" {
		return nil, errors.NewProcessorNotConfiguredError(class.Label())
	}

	entities, err := e.processor.Process(ctx, processor, doc.Data, doc.MediaType)
	if err != nil {
		if stderrors.Is(err, httpclient.ErrTimeout) {
			return nil, errors.NewTimeoutError("docai", err)
		}
		return nil, errors.NewDocumentExtractionFailedError(err)
	}
	return entities, nil
}

// FieldsFromLicense joins every given name and then every family name, in
// extraction order, and keeps the first address verbatim.
func FieldsFromLicense(entities []docai.Entity) *ExtractedFields {
	fields := &ExtractedFields{DocumentClass: DriversLicense}
	var given, family []string
	for _, e := range entities {
		text := strings.TrimSpace(e.MentionText)
		switch e.Type {
		case EntityGivenNames:
			if text != "" {
				given = append(given, text)
			}
		case EntityFamilyName:
			if text != "" {
				family = append(family, text)
			}
		case EntityAddress:
			if fields.Address == "" {
				fields.Address = text
			}
		}
	}
	fields.GivenName = strings.Join(given, " ")
	fields.FamilyName = strings.Join(family, " ")
	fields.FullName = strings.Join(append(given, family...), " ")
	return fields
}

// FieldsFromBankStatement takes the client name and address as they are.
func FieldsFromBankStatement(entities []docai.Entity) *ExtractedFields {
	fields := &ExtractedFields{DocumentClass: BankStatement}
	for _, e := range entities {
		text := strings.TrimSpace(e.MentionText)
		switch e.Type {
		case EntityClientName:
			if fields.FullName == "" {
				fields.FullName = text
			}
		case EntityClientAddress:
			if fields.Address == "" {
				fields.Address = text
			}
		}
	}
	return fields
}
