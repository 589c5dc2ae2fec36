// Package pipeline implements map-reduce summarization of documents.
//
// A run has three stages:
//
//   - Chunk: every document is split into overlapping chunks of at most
//     MaxChunkSize characters (see package chunking).
//   - Map: each chunk is summarized independently with ai.MapInstructions.
//   - Reduce: partial summaries are packed in order into groups that fit
//     MaxReduceInputSize, and each group is summarized with
//     ai.CombineInstructions. Rounds repeat until one summary remains.
//
// Model calls run on a bounded ants worker pool. Each call has its own
// timeout and is retried with exponential backoff unless the error is
// permanent (see ai.Permanent). The first call that fails for good stops
// the stage.
//
// # Bounded Reduction
//
// A partial summary longer than MaxReduceInputSize is re-chunked and its
// chunks summarized before grouping (a shrink pass). A round in which no two
// summaries fit in one group is a stalled round. Shrink passes and stalled
// rounds each consume one unit of MaxReduceDepth; once it is used up the run
// fails with core.BudgetExceededError instead of looping.
//
// # Usage
//
//	p, err := pipeline.NewPipeline(core.DefaultConfig(), provider.Summarizer(),
//	    pipeline.WithProgress(os.Stderr),
//	)
//	if err != nil {
//	    return err
//	}
//	defer p.Release()
//
//	summary, err := p.Run(ctx, documents)
package pipeline
