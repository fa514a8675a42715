// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

import (
	"fmt"

	"github.com/danielhkuo/ballot-ledger/ledger"
	"github.com/danielhkuo/ballot-ledger/models"
)

const (
	VerificationMethod = "Custom sequence and timestamp verification"

	MessageValid   = "All blockchain chains are valid"
	MessageInvalid = "Some chains have integrity issues"
	MessageFailed  = "Blockchain integrity verification failed"
)

// Verify audits every chain for sequence continuity (seq_num runs 1..n
// without gaps) and timestamp monotonicity (creation time never decreases).
// Hashes are not recomputed; they are only previewed.
func Verify(rows []ledger.Row) models.VerificationResult {
	chains := Reconstruct(rows)

	result := models.VerificationResult{
		IsValid:            true,
		VerificationMethod: VerificationMethod,
		TotalChains:        len(chains),
		Chains:             make([]models.ChainVerification, 0, len(chains)),
	}

	for _, c := range chains {
		issues := chainIssues(c)
		first, last := c.Links[0].Row, c.Links[len(c.Links)-1].Row

		cv := models.ChainVerification{
			ChainID:    c.ID,
			BlockCount: len(c.Links),
			IsValid:    len(issues) == 0,
			Issues:     issues,
			FirstBlock: preview(first),
			LastBlock:  preview(last),
		}
		result.Chains = append(result.Chains, cv)
		result.TotalBlocks += cv.BlockCount

		if cv.IsValid {
			result.Summary.ValidChains++
		} else {
			result.Summary.InvalidChains++
			result.IsValid = false
		}
		result.Summary.TotalIssues += len(issues)
	}

	result.Message = MessageValid
	if !result.IsValid {
		result.Message = MessageInvalid
	}
	return result
}

// Failed is the result reported when verification could not run at all.
// It is distinct from a completed pass that found violations.
func Failed(err error) models.VerificationResult {
	return models.VerificationResult{
		IsValid: false,
		Error:   err.Error(),
		Message: MessageFailed,
	}
}

// chainIssues lists every integrity violation of a chain. Sequence issues
// come first, then timestamp issues, each in seq order.
func chainIssues(c Chain) []string {
	issues := []string{}

	for i, l := range c.Links {
		expected := int64(i + 1)
		if l.Row.SeqNum != expected {
			issues = append(issues, fmt.Sprintf("Sequence gap: expected %d, got %d", expected, l.Row.SeqNum))
		}
	}

	for i := 1; i < len(c.Links); i++ {
		prev, curr := c.Links[i-1].Row, c.Links[i].Row
		if curr.CreationTime.Before(prev.CreationTime) {
			issues = append(issues, fmt.Sprintf("Timestamp out of order at seq %d", curr.SeqNum))
		}
	}

	return issues
}

func preview(r ledger.Row) *models.BlockPreview {
	return &models.BlockPreview{
		ChainID: r.ChainID,
		SeqNum:  r.SeqNum,
		Hash:    ledger.PreviewHash(r.Hash),
	}
}
