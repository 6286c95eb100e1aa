package channel

import (
	"strings"
	"unicode/utf8"
)

// TelegramMaxMessageLength is the longest text sendMessage accepts, in characters.
const TelegramMaxMessageLength = 4096

// ChunkConfig controls how outbound text is split when it exceeds a
// platform's maximum message length.
type ChunkConfig struct {
	// MaxLength is the maximum number of characters per chunk.
	// A value <= 0 means no splitting.
	MaxLength int

	// PreserveBlocks avoids splitting inside fenced code blocks (``` ... ```)
	// as long as the block stays under twice MaxLength.
	PreserveBlocks bool
}

// SplitText splits text into chunks of at most cfg.MaxLength characters,
// breaking at line boundaries where possible. Text that already fits is
// returned as a single chunk.
func SplitText(text string, cfg ChunkConfig) []string {
	if cfg.MaxLength <= 0 || utf8.RuneCountInString(text) <= cfg.MaxLength {
		return []string{text}
	}

	var (
		chunks      []string
		current     strings.Builder
		currentLen  int
		inCodeBlock bool
	)
	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line) + 1

		isFence := strings.HasPrefix(strings.TrimSpace(line), "```")
		wasInCodeBlock := inCodeBlock
		if isFence {
			inCodeBlock = !inCodeBlock
		}

		if currentLen+lineLen > cfg.MaxLength {
			// The closing fence still counts as inside the block.
			stillInBlock := wasInCodeBlock || (isFence && !inCodeBlock)
			if cfg.PreserveBlocks && stillInBlock && currentLen < cfg.MaxLength*2 {
				current.WriteString(line + "\n")
				currentLen += lineLen
				continue
			}

			flush()

			if lineLen > cfg.MaxLength {
				chunks = append(chunks, forceSplit(line, cfg.MaxLength)...)
				continue
			}
		}

		current.WriteString(line + "\n")
		currentLen += lineLen
	}
	flush()

	return chunks
}

// forceSplit breaks a single long line into chunks of at most maxLen
// characters without cutting through a UTF-8 sequence.
func forceSplit(line string, maxLen int) []string {
	runes := []rune(line)
	var parts []string
	for len(runes) > maxLen {
		parts = append(parts, string(runes[:maxLen]))
		runes = runes[maxLen:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
