// Package windowing bounds the conversation sent to the model.
//
// Messages are grouped into units that are kept or dropped whole: an
// assistant message carrying tool_use blocks and the user message answering
// every one of them form a pair; anything else stands alone. Fit keeps the
// newest units whose estimated size fits the budget.
package windowing

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
)

// Per-block cost added on top of text runes.
const blockOverhead = 4

// Stats describes one Fit call.
type Stats struct {
	Budget    int
	Estimated int
	Kept      int
	Dropped   int
	// NewestTooLarge is set when the newest unit alone exceeds Budget.
	NewestTooLarge bool
}

// span is a half-open message range [start, end).
type span struct{ start, end int }

// Fit returns the suffix of msgs that fits budget without splitting a
// tool_use/tool_result pair. The window always opens with a user message;
// assistant units left at its head are dropped. When the newest unit does
// not fit, the window is empty and NewestTooLarge is set.
func Fit(msgs []anthropic.MessageParam, budget int) ([]anthropic.MessageParam, Stats) {
	stats := Stats{Budget: budget}
	units := group(msgs)
	if len(units) == 0 {
		return nil, stats
	}

	costs := make([]int, len(units))
	for i, u := range units {
		for _, m := range msgs[u.start:u.end] {
			costs[i] += Estimate(m)
		}
	}

	first := len(units)
	for i := len(units) - 1; i >= 0; i-- {
		if stats.Estimated+costs[i] > budget {
			break
		}
		stats.Estimated += costs[i]
		first = i
	}
	if first == len(units) {
		stats.Dropped = len(units)
		stats.NewestTooLarge = true
		return nil, stats
	}

	for first < len(units) && msgs[units[first].start].Role != anthropic.MessageParamRoleUser {
		stats.Estimated -= costs[first]
		first++
	}
	stats.Kept = len(units) - first
	stats.Dropped = first
	if stats.Kept == 0 {
		return nil, stats
	}
	return msgs[units[first].start:], stats
}

// Estimate is a deterministic size heuristic: text runes, tool_result text
// runes and encoded tool_use input, plus a fixed overhead per block.
func Estimate(m anthropic.MessageParam) int {
	total := 0
	for _, blk := range m.Content {
		total += blockOverhead
		switch {
		case blk.OfText != nil:
			total += utf8.RuneCountInString(blk.OfText.Text)
		case blk.OfToolResult != nil:
			for _, c := range blk.OfToolResult.Content {
				if c.OfText != nil {
					total += utf8.RuneCountInString(c.OfText.Text)
				}
			}
		case blk.OfToolUse != nil:
			if b, err := json.Marshal(blk.OfToolUse.Input); err == nil {
				total += len(b)
			}
		}
	}
	return total
}

func group(msgs []anthropic.MessageParam) []span {
	out := make([]span, 0, len(msgs))
	for i := 0; i < len(msgs); i++ {
		if i+1 < len(msgs) && answers(msgs[i], msgs[i+1]) {
			out = append(out, span{i, i + 2})
			i++
			continue
		}
		out = append(out, span{i, i + 1})
	}
	return out
}

// answers reports whether user carries a tool_result for exactly the
// tool_use ids in assistant, ahead of any other block.
func answers(assistant, user anthropic.MessageParam) bool {
	if assistant.Role != anthropic.MessageParamRoleAssistant || user.Role != anthropic.MessageParamRoleUser {
		return false
	}
	uses := map[string]bool{}
	for _, blk := range assistant.Content {
		if blk.OfToolUse != nil && blk.OfToolUse.ID != "" {
			uses[blk.OfToolUse.ID] = false
		}
	}
	if len(uses) == 0 {
		return false
	}
	for _, blk := range user.Content {
		if blk.OfToolResult == nil {
			break
		}
		seen, ok := uses[blk.OfToolResult.ToolUseID]
		if !ok || seen {
			return false
		}
		uses[blk.OfToolResult.ToolUseID] = true
	}
	for _, seen := range uses {
		if !seen {
			return false
		}
	}
	return true
}
