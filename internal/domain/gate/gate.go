package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// MaxPDFBytes is the upper bound on the decoded PDF payload.
	// Measured on raw bytes, never estimated from the base64 text.
	MaxPDFBytes = 512 * 1024

	// MaxCategories is the upper bound on sanitized category entries
	MaxCategories = 10

	// DefaultWindow is the trailing interval for counting failed attempts
	DefaultWindow = 15 * time.Minute

	// DefaultThreshold is the failed-attempt count at which requests
	// are rejected
	DefaultThreshold = 5
)

// KeyPolicy selects the identifying key for failed-attempt accounting.
type KeyPolicy string

const (
	// KeyByCode counts attempts per sanitized authorization code
	KeyByCode KeyPolicy = "code"
	// KeyByIP counts attempts per client IP
	KeyByIP KeyPolicy = "ip"
	// KeyByComposite counts attempts per (code, IP) pair
	KeyByComposite KeyPolicy = "composite"
)

// CreditStore is the gate's view of credit accounts.
type CreditStore interface {
	// Credits returns the current balance for a sanitized code.
	// found is false when no account matches.
	Credits(ctx context.Context, code string) (credits int, found bool, err error)

	// Reserve atomically decrements one credit, guarded by a positive
	// balance. ok is false when no row qualified, which means the
	// balance was spent by a concurrent request.
	Reserve(ctx context.Context, code string) (remaining int, ok bool, err error)
}

// AttemptLedger records failed credential lookups and answers windowed counts.
type AttemptLedger interface {
	Record(ctx context.Context, identifier string) error
	CountSince(ctx context.Context, identifier string, since time.Time) (int, error)
}

// Request is the boundary into the gate. PDF holds decoded bytes.
type Request struct {
	PDF        []byte
	Categories []string
	AuthCode   string
	ClientIP   string
}

// Admission is the successful outcome: the request may proceed to
// classification and one credit has been reserved for it.
type Admission struct {
	Code        string
	Categories  []string
	CreditsLeft int
}

// Config tunes the gate; zero values fall back to defaults.
type Config struct {
	Window    time.Duration
	Threshold int
	KeyBy     KeyPolicy
}

// Gate decides whether a categorization request may proceed and, if so,
// atomically reserves one credit for it.
type Gate struct {
	store     CreditStore
	ledger    AttemptLedger
	window    time.Duration
	threshold int
	keyBy     KeyPolicy
	now       func() time.Time
}

// New creates a gate over the given credit store and attempt ledger.
func New(store CreditStore, ledger AttemptLedger, cfg Config) *Gate {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	switch cfg.KeyBy {
	case KeyByCode, KeyByIP, KeyByComposite:
	default:
		cfg.KeyBy = KeyByComposite
	}
	return &Gate{
		store:     store,
		ledger:    ledger,
		window:    cfg.Window,
		threshold: cfg.Threshold,
		keyBy:     cfg.KeyBy,
		now:       time.Now,
	}
}

// Admit runs the admission pipeline in order, short-circuiting on the
// first failure: shape validation, rate-limit check, credential lookup,
// credit check, reservation. The rate-limit check runs before the lookup
// so a locked-out caller cannot probe which codes exist.
func (g *Gate) Admit(ctx context.Context, req Request) (*Admission, error) {
	code, categories, err := g.validate(req)
	if err != nil {
		return nil, err
	}

	identifier := g.identifier(code, req.ClientIP)

	count, err := g.ledger.CountSince(ctx, identifier, g.now().Add(-g.window))
	if err != nil {
		return nil, fmt.Errorf("%w: count failed attempts: %v", ErrReservationFailed, err)
	}
	if count >= g.threshold {
		return nil, ErrRateLimited
	}

	credits, found, err := g.store.Credits(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: credential lookup: %v", ErrReservationFailed, err)
	}
	if !found {
		if err := g.ledger.Record(ctx, identifier); err != nil {
			// The rejection stands either way; losing a ledger row only
			// weakens rate limiting, it must not mask the 401.
			log.Error().Err(err).Str("identifier", identifier).Msg("Failed to record attempt")
		}
		return nil, ErrUnauthorized
	}

	if credits <= 0 {
		return nil, ErrInsufficientCredits
	}

	remaining, ok, err := g.store.Reserve(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: reserve credit: %v", ErrReservationFailed, err)
	}
	if !ok {
		// The balance was positive at lookup but a concurrent request
		// spent it before our conditional decrement landed.
		return nil, ErrInsufficientCredits
	}

	return &Admission{
		Code:        code,
		Categories:  categories,
		CreditsLeft: remaining,
	}, nil
}

func (g *Gate) validate(req Request) (string, []string, error) {
	if len(req.PDF) == 0 {
		return "", nil, fmt.Errorf("%w: pdf is required", ErrInvalidInput)
	}
	if len(req.PDF) > MaxPDFBytes {
		return "", nil, fmt.Errorf("%w: pdf exceeds %d bytes", ErrInvalidInput, MaxPDFBytes)
	}

	categories := SanitizeCategories(req.Categories)
	if len(categories) == 0 {
		return "", nil, fmt.Errorf("%w: at least one category is required", ErrInvalidInput)
	}
	if len(categories) > MaxCategories {
		return "", nil, fmt.Errorf("%w: at most %d categories are allowed", ErrInvalidInput, MaxCategories)
	}

	code := SanitizeCode(req.AuthCode)
	if code == "" {
		return "", nil, fmt.Errorf("%w: authorization code is required", ErrInvalidInput)
	}

	return code, categories, nil
}

// identifier derives the rate-limit key. An empty client IP falls back
// to code keying so IP-less callers never pool into one shared bucket.
func (g *Gate) identifier(code, ip string) string {
	switch g.keyBy {
	case KeyByCode:
		return code
	case KeyByIP:
		if ip == "" {
			return code
		}
		return ip
	default:
		if ip == "" {
			return code
		}
		return code + "|" + ip
	}
}
