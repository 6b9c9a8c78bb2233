// Package deliver turns a single reply string into protocol-safe outbound
// messages and paces them onto the transport.
//
// Planning and pacing are split: Plan is a pure function of its inputs so the
// same reply always yields the same ordered chunk sequence, and the Pacer is
// the only piece that touches the transport or the clock.
package deliver

import "fmt"

const (
	// ChunkLimit is the per-message size bound in characters (runes, not
	// bytes — multi-byte text must not be split mid-character).
	ChunkLimit = 500

	// MaxLines is the most lines posted to the arrival target before the
	// reply is redirected to the sender's private target.
	MaxLines = 4
)

// Strategy names the two delivery outcomes.
type Strategy int

const (
	// Direct delivers the whole reply to the arrival target.
	Direct Strategy = iota

	// Redirect delivers every line to the sender's private target,
	// preceded by a notice in the arrival channel when they differ.
	Redirect
)

// Send is one outbound protocol message.
type Send struct {
	Target string
	Text   string
}

// Plan is an ordered delivery plan for a single reply.
type Plan struct {
	Strategy Strategy
	Sends    []Send
}

// BuildPlan splits reply into logical lines and decides between the two
// delivery strategies.
//
// More than MaxLines lines routes the whole reply to the sender's private
// target, with a notice left in the arrival channel when the two differ;
// otherwise the reply goes to the arrival target as-is. Every line, empty
// ones included, is chunked at exact rune boundaries of at most ChunkLimit.
func BuildPlan(reply, arrivalTarget, sender string) Plan {
	lines := splitLines(reply)

	if len(lines) > MaxLines {
		plan := Plan{Strategy: Redirect}
		if arrivalTarget != sender {
			plan.Sends = append(plan.Sends, Send{
				Target: arrivalTarget,
				Text:   fmt.Sprintf("%s: sure but it's a big one so I'll send it to just you", sender),
			})
		}
		for _, line := range lines {
			for _, chunk := range chunkLine(line, ChunkLimit) {
				plan.Sends = append(plan.Sends, Send{Target: sender, Text: chunk})
			}
		}
		return plan
	}

	plan := Plan{Strategy: Direct}
	for _, line := range lines {
		for _, chunk := range chunkLine(line, ChunkLimit) {
			plan.Sends = append(plan.Sends, Send{Target: arrivalTarget, Text: chunk})
		}
	}
	return plan
}

// splitLines splits on '\n', keeping empty lines: a visually empty line is
// still a significant line and produces an (empty) protocol message.
func splitLines(text string) []string {
	lines := []string{}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line := text[start:i]
			if i > start && text[i-1] == '\r' {
				line = text[start : i-1]
			}
			lines = append(lines, line)
			start = i + 1
		}
	}
	if start < len(text) || len(lines) == 0 {
		lines = append(lines, text[start:])
	}
	return lines
}

// chunkLine splits a line into chunks of at most limit runes, on exact rune
// count boundaries with no attempt to break on whitespace. An empty line
// yields exactly one empty chunk.
func chunkLine(line string, limit int) []string {
	runes := []rune(line)
	if len(runes) <= limit {
		return []string{line}
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}
	chunks = append(chunks, string(runes))
	return chunks
}
