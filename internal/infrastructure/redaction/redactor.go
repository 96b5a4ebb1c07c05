// Package redaction scrubs credentials out of toolchain output before it is
// recorded. Compilers echo offending source lines, and sketches commonly
// carry WiFi passwords and API keys in #defines and string constants.
package redaction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Redacted replaces every detected secret unless hash mode is on.
const Redacted = "[REDACTED]"

var _ build.Scrubber = (*Redactor)(nil)

// Redactor replaces secrets in strings.
// All fields are read-only after construction, so it is safe for concurrent use.
type Redactor struct {
	// patterns are replaced as a whole match
	patterns []*regexp.Regexp
	// literals keep the surrounding source and replace only group 1
	literals []*regexp.Regexp
	hashMode bool
	salt     string

	// nil when gitleaks is disabled or its rules failed to load
	gitleaksDetector *detect.Detector
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Extra patterns to redact as a whole match (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// Replace with a salted hash instead of [REDACTED]
	HashMode bool
	// HMAC key for hash mode. Empty gives a deterministic unsalted hash.
	Salt string
	// Use only the built-in and extra patterns
	DisableGitleaks bool
	Logger          *slog.Logger
}

// New creates a Redactor. Gitleaks rule loading failures fall back to the
// regex patterns; invalid extra patterns are an error.
func New(cfg Config) (*Redactor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Redactor{
		hashMode: cfg.HashMode,
		salt:     cfg.Salt,
		patterns: make([]*regexp.Regexp, 0, len(defaultPatterns)+len(cfg.Patterns)),
		literals: make([]*regexp.Regexp, 0, len(credentialLiterals)),
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			logger.Warn("gitleaks rules unavailable, using built-in patterns", "error", err)
		} else {
			r.gitleaksDetector = detector
		}
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	for _, p := range credentialLiterals {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile credential pattern %s: %w", p, err)
		}
		r.literals = append(r.literals, re)
	}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile redaction pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector loads the gitleaks default rule set.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// ScrubString replaces secrets in input. Gitleaks findings go first, then
// credential literals, then the whole-match patterns.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input

	if r.gitleaksDetector != nil {
		findings := r.gitleaksDetector.Detect(detect.Fragment{Raw: result})
		for _, finding := range findings {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	for _, re := range r.literals {
		result = r.replaceGroup(re, result)
	}

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}

	return result
}

// replaceGroup substitutes group 1 of every match and keeps the rest.
func (r *Redactor) replaceGroup(re *regexp.Regexp, s string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[2], m[3]
		if start < 0 || r.isReplacement(s[start:end]) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(r.replacement(s[start:end]))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func (r *Redactor) isReplacement(s string) bool {
	return s == Redacted || strings.HasPrefix(s, "[hmac:")
}

func (r *Redactor) replacement(secret string) string {
	if r.hashMode {
		return r.hash(secret)
	}
	return Redacted
}

// hash returns a truncated HMAC-SHA256 of the secret so repeated values
// can be correlated across reports.
// Format: [hmac:a1b2c3d4e5f6a7b8]
func (r *Redactor) hash(secret string) string {
	mac := hmac.New(sha256.New, []byte(r.salt))
	mac.Write([]byte(secret))
	return fmt.Sprintf("[hmac:%s]", hex.EncodeToString(mac.Sum(nil))[:16])
}

// defaultPatterns are high-confidence token shapes.
var defaultPatterns = []string{
	// AWS Access Key ID
	`\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
	// Generic Private Key Header
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	// Github Token
	`gh[pousr]_[A-Za-z0-9_]{36,255}`,
	// Slack Token
	`xox[baprs]-([0-9a-zA-Z]{10,48})?`,
}

// credentialLiterals match string literals bound to credential-like names
// in C and C++ source, as echoed back by the compiler.
var credentialLiterals = []string{
	// #define WIFI_PASS "..."
	`(?i)#\s*define\s+\w*(?:pass|pwd|secret|token|api_?key|auth|psk)\w*\s+"([^"\n]+)"`,
	// const char* password = "...";  char apiKey[] = "...";
	`(?i)\b\w*(?:pass|pwd|secret|token|api_?key|auth|psk)\w*\s*(?:\[\s*\d*\s*\])?\s*=\s*"([^"\n]+)"`,
}
