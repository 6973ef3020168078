package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// Match types reported by the resolver.
const (
	MatchTaxID      = "tax_id"
	MatchExact      = "exact"
	MatchFuzzy      = "fuzzy"
	MatchNew        = "new"
	MatchUnresolved = "unresolved"
)

// VendorResolution is the outcome of resolving a free-form vendor candidate.
type VendorResolution struct {
	VendorID  *string
	MatchType string
	Score     float64
	// Created reports that a new vendor row was made for this candidate.
	Created bool
}

// Matched reports whether an existing vendor was found.
func (r VendorResolution) Matched() bool {
	return r.MatchType == MatchTaxID || r.MatchType == MatchExact || r.MatchType == MatchFuzzy
}

// VendorResolver maps extracted vendor candidates onto the registry.
// Resolution is a best-effort guess, always revisable while the document is a
// draft; it never blocks on user input.
type VendorResolver struct {
	vendorRepo ports.VendorRepository
	threshold  float64
}

// NewVendorResolver creates a VendorResolver with the fuzzy acceptance
// threshold in (0,1].
func NewVendorResolver(vendorRepo ports.VendorRepository, threshold float64) *VendorResolver {
	return &VendorResolver{vendorRepo: vendorRepo, threshold: threshold}
}

// Resolve matches candidate (and optional tax id) against the registry,
// creating a new vendor when nothing is close enough. An empty candidate with
// no tax id yields an unresolved result.
func (r *VendorResolver) Resolve(ctx context.Context, candidate string, taxID *string) (VendorResolution, error) {
	// Tax id is the strongest signal; it short-circuits name matching.
	if taxID != nil && *taxID != "" {
		vendor, err := r.vendorRepo.FindVendorByTaxID(ctx, *taxID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return VendorResolution{}, fmt.Errorf("failed to look up vendor by tax id: %w", err)
		}
		if vendor != nil {
			return VendorResolution{VendorID: &vendor.VendorID, MatchType: MatchTaxID, Score: 1.0}, nil
		}
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return VendorResolution{MatchType: MatchUnresolved}, nil
	}

	normalized := NormalizeVendorName(candidate)
	if normalized == "" {
		return VendorResolution{MatchType: MatchUnresolved}, nil
	}

	vendor, err := r.vendorRepo.FindVendorByNormalizedName(ctx, normalized)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return VendorResolution{}, fmt.Errorf("failed to look up vendor by normalized name: %w", err)
	}
	if vendor != nil {
		return VendorResolution{VendorID: &vendor.VendorID, MatchType: MatchExact, Score: 1.0}, nil
	}

	best, score, err := r.bestFuzzyMatch(ctx, normalized)
	if err != nil {
		return VendorResolution{}, err
	}
	if best != nil && score >= r.threshold {
		return VendorResolution{VendorID: &best.VendorID, MatchType: MatchFuzzy, Score: score}, nil
	}

	return r.createVendor(ctx, candidate, normalized, taxID)
}

// bestFuzzyMatch scans the registry for the closest normalized name. Equal
// scores break toward the vendor with the most ledger-entry associations.
func (r *VendorResolver) bestFuzzyMatch(ctx context.Context, normalized string) (*models.Vendor, float64, error) {
	usages, err := r.vendorRepo.ListVendorUsage(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendors for fuzzy matching: %w", err)
	}

	var best *models.VendorUsage
	bestScore := 0.0
	for i := range usages {
		score := SimilarityRatio(normalized, usages[i].NormalizedName)
		if score > bestScore || (score == bestScore && best != nil && usages[i].EntryCount > best.EntryCount) {
			bestScore = score
			best = &usages[i]
		}
	}
	if best == nil {
		return nil, 0, nil
	}
	return &best.Vendor, bestScore, nil
}

// createVendor inserts the candidate as a new vendor. A unique violation on
// the normalized name means a concurrent resolution won the race; the loser
// re-reads and matches the winner's row.
func (r *VendorResolver) createVendor(ctx context.Context, displayName, normalized string, taxID *string) (VendorResolution, error) {
	vendor := models.Vendor{
		VendorID:       uuid.NewString(),
		DisplayName:    displayName,
		NormalizedName: normalized,
		TaxID:          taxID,
		CreatedAt:      time.Now().UTC(),
	}

	err := r.vendorRepo.SaveVendor(ctx, vendor)
	if err == nil {
		return VendorResolution{VendorID: &vendor.VendorID, MatchType: MatchNew, Created: true}, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicate) {
		return VendorResolution{}, fmt.Errorf("failed to create vendor %q: %w", displayName, err)
	}

	// Lost the race: the row now exists, match it instead.
	existing, err := r.vendorRepo.FindVendorByNormalizedName(ctx, normalized)
	if err != nil {
		return VendorResolution{}, fmt.Errorf("%w: re-read after conflict failed: %v", apperrors.ErrVendorConflict, err)
	}
	return VendorResolution{VendorID: &existing.VendorID, MatchType: MatchExact, Score: 1.0}, nil
}

// Trailing legal-form tokens dropped during normalization.
var legalSuffixes = map[string]struct{}{
	"ltd": {}, "sti": {}, "as": {}, "tic": {}, "san": {},
	"ticaret": {}, "sanayi": {}, "anonim": {}, "sirketi": {}, "sirket": {},
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

var diacriticFolder = strings.NewReplacer(
	"ç", "c", "ğ", "g", "ı", "i", "i̇", "i", "ö", "o", "ş", "s", "ü", "u",
	"â", "a", "î", "i", "û", "u", "é", "e", "è", "e", "ä", "a", "á", "a",
)

// NormalizeVendorName produces the matching key for a vendor name: Turkish
// case fold, diacritic fold, punctuation strip, whitespace collapse, trailing
// legal-form tokens dropped.
func NormalizeVendorName(name string) string {
	lowered := strings.ToLowerSpecial(unicode.TurkishCase, name)
	folded := diacriticFolder.Replace(lowered)
	stripped := nonWord.ReplaceAllString(folded, "")
	tokens := strings.Fields(stripped)

	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if _, ok := legalSuffixes[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// SimilarityRatio computes 2*M/T over the two strings, where M is the total
// length of matching blocks and T the combined length, in [0,1].
func SimilarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	matched := matchingTotal(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal sums the longest common block and recurses into the pieces on
// either side of it.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] is the length of the common suffix ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			tmp := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prevDiag + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prevDiag = tmp
		}
	}
	return bestA, bestB, bestSize
}
