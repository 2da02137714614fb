// Package analyze derives a text statistic from a transcript based on the
// command the user typed alongside the audio upload.
package analyze

import (
	"strconv"
	"strings"
)

const saidThat = "って言ってたね！"

// Process composes the reply text for a transcript. An empty command yields the
// base reply only; otherwise the command selects one appended statistic.
//
// Word and keyword counting split the transcript on single space characters,
// matching the behaviour of the original service: words separated by tabs,
// newlines or multiple spaces are not isolated as separate tokens.
func Process(command, transcript string) string {
	message := transcript + saidThat

	command = strings.TrimSpace(command)
	if command == "" {
		return message
	}

	switch normalized := strings.ToUpper(command); normalized {
	case "WORD":
		message += " Word Count: " + strconv.Itoa(wordCount(transcript))
	case "CHARACTER":
		message += " Character Count: " + strconv.Itoa(runeCount(transcript, func(r rune) bool { return r != ' ' }))
	case "SPACE":
		message += " Space Count: " + strconv.Itoa(runeCount(transcript, func(r rune) bool { return r == ' ' }))
	case "VOWEL":
		message += " Vowel Count: " + strconv.Itoa(runeCount(strings.ToUpper(transcript), isVowel))
	default:
		n := keywordCount(transcript, normalized)
		message += " Keyword " + command + " found " + strconv.Itoa(n) + " times."
	}

	return message
}

func wordCount(s string) int {
	n := 0
	for _, w := range strings.Split(s, " ") {
		if w != "" {
			n++
		}
	}
	return n
}

func keywordCount(s, keyword string) int {
	n := 0
	for _, w := range strings.Split(strings.ToUpper(s), " ") {
		if w == keyword {
			n++
		}
	}
	return n
}

func runeCount(s string, match func(rune) bool) int {
	n := 0
	for _, r := range s {
		if match(r) {
			n++
		}
	}
	return n
}

func isVowel(r rune) bool {
	switch r {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
