package categorize

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/docsort/docsort-api/internal/domain/gate"
	"github.com/docsort/docsort-api/internal/domain/usage"
	"github.com/docsort/docsort-api/internal/pkg/classifier"
)

// RequestLogger persists the derived result of an admitted request.
type RequestLogger interface {
	Record(ctx context.Context, entry usage.Entry) error
}

// CreditRefunder returns a reserved credit. Only consulted when the
// refund-on-upstream-failure policy is enabled.
type CreditRefunder interface {
	Refund(ctx context.Context, code string) error
}

// Service runs the categorization pipeline: gate admission, the Gemini
// call, result parsing and audit logging.
type Service struct {
	gate       *gate.Gate
	classifier classifier.Classifier
	logs       RequestLogger
	refunder   CreditRefunder

	// refundOnUpstreamFailure names the credit policy for failed
	// classification calls. Off by default: the credit stays spent.
	refundOnUpstreamFailure bool
}

func NewService(g *gate.Gate, c classifier.Classifier, logs RequestLogger, refunder CreditRefunder, refundOnUpstreamFailure bool) *Service {
	return &Service{
		gate:                    g,
		classifier:              c,
		logs:                    logs,
		refunder:                refunder,
		refundOnUpstreamFailure: refundOnUpstreamFailure,
	}
}

// Categorize admits the request, reserves one credit and classifies the
// PDF. Gate rejections pass through untouched; upstream failures wrap
// ErrUpstream.
func (s *Service) Categorize(ctx context.Context, pdf []byte, categories []string, authCode, clientIP string) (map[string]interface{}, error) {
	// A server without a classifier can never render the service, so
	// reject before the gate reserves a credit nobody can earn back.
	if s.classifier == nil {
		return nil, ErrNotConfigured
	}

	adm, err := s.gate.Admit(ctx, gate.Request{
		PDF:        pdf,
		Categories: categories,
		AuthCode:   authCode,
		ClientIP:   clientIP,
	})
	if err != nil {
		return nil, err
	}

	raw, err := s.classifier.Classify(ctx, pdf, adm.Categories)
	if err != nil {
		s.record(ctx, usage.Entry{
			AuthCode:    adm.Code,
			CreditsLeft: adm.CreditsLeft,
			Success:     false,
		})

		if s.refundOnUpstreamFailure && s.refunder != nil {
			if refundErr := s.refunder.Refund(ctx, adm.Code); refundErr != nil {
				log.Error().Err(refundErr).Str("code", adm.Code).Msg("Failed to refund credit")
			}
		}

		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	result := ParseResult(raw)
	if result.Partial {
		log.Warn().Str("code", adm.Code).Msg("Model output was not a JSON object, using bare-text fallback")
	}

	s.record(ctx, usage.Entry{
		AuthCode:    adm.Code,
		Category:    result.Category,
		CreditsLeft: adm.CreditsLeft,
		Success:     true,
	})

	return result.Payload(adm.CreditsLeft), nil
}

// record logs the request for audit. Logging failures never fail the
// request that already spent a credit.
func (s *Service) record(ctx context.Context, entry usage.Entry) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		log.Error().Err(err).Str("code", entry.AuthCode).Msg("Failed to record request log")
	}
}
