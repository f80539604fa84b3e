// Package commands parses and dispatches the ":" command palette.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sandeepkv93/todoflow/internal/model"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeSearch    Type = "search"
	TypeSort      Type = "sort"
	TypeDirection Type = "dir"
	TypeOpen      Type = "open"
	TypePage      Type = "page"
	TypeDone      Type = "done"
	TypeRename    Type = "rename"
	TypeDismiss   Type = "dismiss"
	TypeRefresh   Type = "refresh"
)

var aliases = map[string]Type{
	"a":         TypeAdd,
	"new":       TypeAdd,
	"find":      TypeSearch,
	"direction": TypeDirection,
	"go":        TypeOpen,
	"complete":  TypeDone,
	"mv":        TypeRename,
	"clear":     TypeDismiss,
	"reload":    TypeRefresh,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

// SearchArgs with an empty Query clears the search.
type SearchArgs struct {
	Query string
}

// SortArgs leaves Direction empty when only the field was given.
type SortArgs struct {
	Field     model.SortField
	Direction model.SortDirection
}

type DirectionArgs struct {
	Direction model.SortDirection
}

type OpenArgs struct {
	Path string
}

type PageArgs struct {
	Page int
}

// DoneArgs.Target is a record id or a 1-based row number on the current page.
type DoneArgs struct {
	Target string
}

type RenameArgs struct {
	Target string
	Title  string
}

type Command struct {
	Type      Type
	Raw       string
	Add       *AddArgs
	Search    *SearchArgs
	Sort      *SortArgs
	Direction *DirectionArgs
	Open      *OpenArgs
	Page      *PageArgs
	Done      *DoneArgs
	Rename    *RenameArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, ":"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, afterFields(raw, 1))
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: afterFields(raw, 1)}}, nil
	case TypeSort:
		return parseSort(input, args)
	case TypeDirection:
		return parseDirection(input, args)
	case TypeOpen:
		return parseOpen(input, args)
	case TypePage:
		return parsePage(input, args)
	case TypeDone:
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a single id or row number"}
		}
		return Command{Type: TypeDone, Raw: input, Done: &DoneArgs{Target: args[0]}}, nil
	case TypeRename:
		return parseRename(input, raw, args)
	case TypeDismiss, TypeRefresh:
		return Command{Type: typ, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, title string) (Command, error) {
	if err := model.ValidateTitle(title); err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires a field (title, createdTime) and an optional direction"}
	}
	field, err := model.ParseSortField(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	out := &SortArgs{Field: field}
	if len(args) == 2 {
		dir, dirErr := model.ParseSortDirection(args[1])
		if dirErr != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: dirErr.Error()}
		}
		out.Direction = dir
	}
	return Command{Type: TypeSort, Raw: raw, Sort: out}, nil
}

func parseDirection(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "dir requires asc or desc"}
	}
	dir, err := model.ParseSortDirection(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeDirection, Raw: raw, Direction: &DirectionArgs{Direction: dir}}, nil
}

func parseOpen(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "open requires a path such as / or /about"}
	}
	path := args[0]
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Command{Type: TypeOpen, Raw: raw, Open: &OpenArgs{Path: path}}, nil
}

func parsePage(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "page requires a number"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid page: %s", args[0])}
	}
	return Command{Type: TypePage, Raw: raw, Page: &PageArgs{Page: n}}, nil
}

func parseRename(input, raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "rename requires an id and a title"}
	}
	title := afterFields(raw, 2)
	if err := model.ValidateTitle(title); err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "rename requires a title"}
	}
	return Command{Type: TypeRename, Raw: input, Rename: &RenameArgs{Target: args[0], Title: title}}, nil
}

// afterFields returns s with its first n whitespace-separated fields removed,
// keeping the spacing inside the remainder.
func afterFields(s string, n int) string {
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for i := 0; i < n && rest != ""; i++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return strings.TrimRightFunc(rest, unicode.IsSpace)
}
