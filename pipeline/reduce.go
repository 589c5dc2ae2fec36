package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
)

// GroupSeparator joins the members of a group into one reduce input.
const GroupSeparator = "\n\n"

// reduce combines partial summaries in rounds until one remains.
//
// Each round first shrinks any summary longer than MaxReduceInputSize by
// re-chunking and re-summarizing it, then packs summaries in order into
// groups that fit the budget and summarizes each group. Every shrink pass
// and every round that fails to merge anything uses up one unit of
// MaxReduceDepth; when none is left the reduce fails with
// *core.BudgetExceededError.
func (p *Pipeline) reduce(ctx context.Context, summaries []core.PartialSummary) (string, error) {
	budget := p.config.MaxReduceInputSize
	remaining := p.config.MaxReduceDepth

	for round := 1; ; round++ {
		if len(summaries) == 1 {
			return summaries[0].Text, nil
		}
		if len(summaries) == 0 {
			return "", fmt.Errorf("%w: no partial summaries to reduce", core.ErrEmptyInput)
		}

		logger := p.logger.With("stage", core.StageReduce, "round", round)

		for longest := longestSummary(summaries); longest > budget; longest = longestSummary(summaries) {
			if remaining == 0 {
				return "", &core.BudgetExceededError{
					Round:  round,
					Depth:  p.config.MaxReduceDepth,
					Length: longest,
					Budget: budget,
				}
			}
			remaining--
			logger.Debug("shrinking oversized summaries", "longest", longest, "budget", budget, "depth_left", remaining)

			var err error
			summaries, err = p.shrink(ctx, round, summaries)
			if err != nil {
				return "", err
			}
			if len(summaries) < 2 {
				break
			}
		}
		if len(summaries) < 2 {
			continue
		}

		groups := groupSummaries(summaries, budget)
		if len(groups) == len(summaries) {
			// No two neighbours fit together; summarizing each alone is
			// the only way to make progress.
			if remaining == 0 {
				return "", &core.BudgetExceededError{
					Round:  round,
					Depth:  p.config.MaxReduceDepth,
					Length: shortestPair(summaries),
					Budget: budget,
				}
			}
			remaining--
			logger.Debug("stalled round", "summaries", len(summaries), "depth_left", remaining)
		}

		inputs := make([]string, len(groups))
		ordinals := make([]int, len(groups))
		for i, group := range groups {
			inputs[i] = joinGroup(group)
			ordinals[i] = i
		}

		logger.Info("reducing", "summaries", len(summaries), "groups", len(groups))
		outputs, err := p.dispatch(ctx, core.StageReduce, round, inputs, ordinals, ai.CombineInstructions)
		if err != nil {
			return "", err
		}
		summaries = renumber(outputs)
	}
}

// shrink replaces every summary longer than the budget with the summaries
// of its chunks, in place. Blank oversized summaries are dropped.
func (p *Pipeline) shrink(ctx context.Context, round int, summaries []core.PartialSummary) ([]core.PartialSummary, error) {
	budget := p.config.MaxReduceInputSize

	pieces := make([][]string, len(summaries))
	var (
		inputs   []string
		ordinals []int
	)
	for i, s := range summaries {
		if s.Len() <= budget {
			continue
		}
		pieces[i] = p.shrinker.Split(s.Text)
		inputs = append(inputs, pieces[i]...)
		for range pieces[i] {
			ordinals = append(ordinals, s.Ordinal)
		}
	}

	outputs, err := p.dispatch(ctx, core.StageMap, round, inputs, ordinals, ai.MapInstructions)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(summaries)+len(outputs))
	next := 0
	for i, s := range summaries {
		if s.Len() <= budget {
			texts = append(texts, s.Text)
			continue
		}
		texts = append(texts, outputs[next:next+len(pieces[i])]...)
		next += len(pieces[i])
	}
	return renumber(texts), nil
}

// groupSummaries packs summaries in order into groups whose joined length
// stays within budget. A summary that alone exceeds the budget gets a group
// of its own.
func groupSummaries(summaries []core.PartialSummary, budget int) [][]core.PartialSummary {
	sepLen := utf8.RuneCountInString(GroupSeparator)

	var (
		groups  [][]core.PartialSummary
		current []core.PartialSummary
		length  int
	)
	for _, s := range summaries {
		n := s.Len()
		if len(current) > 0 && length+sepLen+n > budget {
			groups = append(groups, current)
			current, length = nil, 0
		}
		if len(current) > 0 {
			length += sepLen
		}
		current = append(current, s)
		length += n
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func joinGroup(group []core.PartialSummary) string {
	texts := make([]string, len(group))
	for i, s := range group {
		texts[i] = s.Text
	}
	return strings.Join(texts, GroupSeparator)
}

// renumber assigns fresh ordinals 0..k-1.
func renumber(texts []string) []core.PartialSummary {
	summaries := make([]core.PartialSummary, len(texts))
	for i, text := range texts {
		summaries[i] = core.PartialSummary{Ordinal: i, Text: text}
	}
	return summaries
}

func longestSummary(summaries []core.PartialSummary) int {
	longest := 0
	for _, s := range summaries {
		longest = max(longest, s.Len())
	}
	return longest
}

// shortestPair returns the joined length of the smallest adjacent pair.
func shortestPair(summaries []core.PartialSummary) int {
	sepLen := utf8.RuneCountInString(GroupSeparator)
	shortest := -1
	for i := 1; i < len(summaries); i++ {
		n := summaries[i-1].Len() + sepLen + summaries[i].Len()
		if shortest < 0 || n < shortest {
			shortest = n
		}
	}
	return shortest
}
