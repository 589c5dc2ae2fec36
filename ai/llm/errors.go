package llm

import (
	"errors"
	"fmt"

	"github.com/poiesic/summarit/ai"
	"github.com/tmc/langchaingo/llms"
)

// classifyError normalizes a model client failure with langchaingo's error
// mapper and marks the failures no retry can fix as ai.Permanent.
func classifyError(mapper *llms.ErrorMapper, err error) error {
	if err == nil {
		return nil
	}

	wrapped := mapper.WrapError(err)
	if isPermanent(wrapped) {
		return ai.Permanent(fmt.Errorf("summarize: %w", wrapped))
	}
	return fmt.Errorf("summarize: %w", wrapped)
}

func isPermanent(err error) bool {
	var llmErr *llms.Error
	if errors.As(err, &llmErr) && llmErr.Code == llms.ErrCodeResourceNotFound {
		// Unknown model; pulling it is an operator action.
		return true
	}
	return llms.IsAuthenticationError(err) ||
		llms.IsInvalidRequestError(err) ||
		llms.IsTokenLimitError(err) ||
		llms.IsContentFilterError(err) ||
		llms.IsQuotaExceededError(err) ||
		llms.IsNotImplementedError(err)
}
