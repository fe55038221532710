package prompt

import (
	"strconv"
	"strings"
	"unicode"
)

// Command is one parsed line of operator input.
type Command interface {
	isCommand()
}

// Empty is a blank line. It redisplays the menu.
type Empty struct{}

// Skip leaves the document unresolved.
type Skip struct{}

// Delete asks to delete the document on all nodes. Needs confirmation.
type Delete struct{}

// Confirm is "yes", accepted only while a delete or replace is pending.
type Confirm struct{}

// ViewVersion shows a document version. Text is the version as typed, for
// messages; Version is 0 when Text is not a number. Projection is the rest
// of the line and may be empty.
type ViewVersion struct {
	Version    int
	Text       string
	Projection string
}

// ReplaceWith asks to make a version authoritative. Needs confirmation.
type ReplaceWith struct {
	Version int
	Text    string
}

// Invalid is any other input.
type Invalid struct {
	Input string
}

func (Empty) isCommand()       {}
func (Skip) isCommand()        {}
func (Delete) isCommand()      {}
func (Confirm) isCommand()     {}
func (ViewVersion) isCommand() {}
func (ReplaceWith) isCommand() {}
func (Invalid) isCommand()     {}

// Parse decodes one input line. Keywords are case-insensitive and
// surrounding whitespace is ignored.
func Parse(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Empty{}
	}

	switch strings.ToLower(line) {
	case "skip":
		return Skip{}
	case "delete":
		return Delete{}
	case "yes":
		return Confirm{}
	}

	if line[0] == 'r' || line[0] == 'R' {
		text := strings.TrimSpace(line[1:])
		if n := positive(text); n > 0 {
			return ReplaceWith{Version: n, Text: text}
		}
		return Invalid{Input: line}
	}

	if line[0] >= '0' && line[0] <= '9' {
		text, rest := line, ""
		if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
			text, rest = line[:i], strings.TrimSpace(line[i:])
		}
		return ViewVersion{Version: positive(text), Text: text, Projection: rest}
	}

	return Invalid{Input: line}
}

// positive parses a decimal version number, returning 0 for anything else.
func positive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
