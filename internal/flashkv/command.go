package flashkv

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode"
)

// Verb identifies a FlashKV command.
type Verb string

const (
	VerbPing    Verb = "PING"
	VerbGet     Verb = "GET"
	VerbSet     Verb = "SET"
	VerbDel     Verb = "DEL"
	VerbIncr    Verb = "INCR"
	VerbDecr    Verb = "DECR"
	VerbLPush   Verb = "LPUSH"
	VerbLPop    Verb = "LPOP"
	VerbExists  Verb = "EXISTS"
	VerbExpire  Verb = "EXPIRE"
	VerbTTL     Verb = "TTL"
	VerbKeys    Verb = "KEYS"
	VerbFlushDB Verb = "FLUSHDB"
	VerbRaw     Verb = "RAW"
)

// Command is a single FlashKV operation ready for serialization.
// Only the fields relevant to the verb are populated: Key for key-bearing
// verbs, Value for SET/LPUSH, Seconds for EXPIRE, Pattern for KEYS, and
// Raw for passthrough commands.
type Command struct {
	Verb    Verb
	Key     string
	Value   string
	Seconds int64
	Pattern string
	Raw     string
}

// ParseCommand parses a whitespace-tokenized command line. Verbs are
// case-insensitive; unknown verbs become a raw passthrough command carrying
// the original text. Missing required arguments are parse errors.
func ParseCommand(s string) (Command, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch strings.ToUpper(parts[0]) {
	case "PING":
		return Command{Verb: VerbPing}, nil
	case "GET":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("GET requires a key")
		}
		return Command{Verb: VerbGet, Key: parts[1]}, nil
	case "SET":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("SET requires a key and value")
		}
		return Command{Verb: VerbSet, Key: parts[1], Value: strings.Join(parts[2:], " ")}, nil
	case "DEL", "DELETE":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("DEL requires a key")
		}
		return Command{Verb: VerbDel, Key: parts[1]}, nil
	case "INCR":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("INCR requires a key")
		}
		return Command{Verb: VerbIncr, Key: parts[1]}, nil
	case "DECR":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("DECR requires a key")
		}
		return Command{Verb: VerbDecr, Key: parts[1]}, nil
	case "LPUSH":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("LPUSH requires a key and value")
		}
		return Command{Verb: VerbLPush, Key: parts[1], Value: strings.Join(parts[2:], " ")}, nil
	case "LPOP":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("LPOP requires a key")
		}
		return Command{Verb: VerbLPop, Key: parts[1]}, nil
	case "EXISTS":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("EXISTS requires a key")
		}
		return Command{Verb: VerbExists, Key: parts[1]}, nil
	case "EXPIRE":
		if len(parts) < 3 {
			return Command{}, fmt.Errorf("EXPIRE requires a key and seconds")
		}
		seconds, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || seconds < 0 {
			return Command{}, fmt.Errorf("invalid seconds value %q", parts[2])
		}
		return Command{Verb: VerbExpire, Key: parts[1], Seconds: seconds}, nil
	case "TTL":
		if len(parts) < 2 {
			return Command{}, fmt.Errorf("TTL requires a key")
		}
		return Command{Verb: VerbTTL, Key: parts[1]}, nil
	case "KEYS":
		pattern := "*"
		if len(parts) >= 2 {
			pattern = parts[1]
		}
		return Command{Verb: VerbKeys, Pattern: pattern}, nil
	case "FLUSHDB":
		return Command{Verb: VerbFlushDB}, nil
	default:
		return Command{Verb: VerbRaw, Raw: s}, nil
	}
}

// ParseCommands parses a list of command lines, failing on the first bad one.
func ParseCommands(lines []string) ([]Command, error) {
	commands := make([]Command, 0, len(lines))
	for i, line := range lines {
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// WireFormat serializes the command to its CRLF-terminated wire form.
// Raw commands pass through untouched when already CRLF-terminated; a bare
// trailing LF is upgraded to CRLF, anything else gets CRLF appended. This
// is the interoperability contract with the server, so the exact bytes
// matter.
func (c Command) WireFormat() string {
	switch c.Verb {
	case VerbPing:
		return "PING\r\n"
	case VerbGet:
		return fmt.Sprintf("GET %s\r\n", c.Key)
	case VerbSet:
		return fmt.Sprintf("SET %s %s\r\n", c.Key, c.Value)
	case VerbDel:
		return fmt.Sprintf("DEL %s\r\n", c.Key)
	case VerbIncr:
		return fmt.Sprintf("INCR %s\r\n", c.Key)
	case VerbDecr:
		return fmt.Sprintf("DECR %s\r\n", c.Key)
	case VerbLPush:
		return fmt.Sprintf("LPUSH %s %s\r\n", c.Key, c.Value)
	case VerbLPop:
		return fmt.Sprintf("LPOP %s\r\n", c.Key)
	case VerbExists:
		return fmt.Sprintf("EXISTS %s\r\n", c.Key)
	case VerbExpire:
		return fmt.Sprintf("EXPIRE %s %d\r\n", c.Key, c.Seconds)
	case VerbTTL:
		return fmt.Sprintf("TTL %s\r\n", c.Key)
	case VerbKeys:
		return fmt.Sprintf("KEYS %s\r\n", c.Pattern)
	case VerbFlushDB:
		return "FLUSHDB\r\n"
	default:
		if strings.HasSuffix(c.Raw, "\r\n") {
			return c.Raw
		}
		if strings.HasSuffix(c.Raw, "\n") {
			return strings.TrimRightFunc(c.Raw, unicode.IsSpace) + "\r\n"
		}
		return c.Raw + "\r\n"
	}
}

// HasKey reports whether the verb carries a key field that random-key
// substitution may rewrite.
func (c Command) HasKey() bool {
	switch c.Verb {
	case VerbGet, VerbSet, VerbDel, VerbIncr, VerbDecr, VerbLPush, VerbLPop, VerbExists, VerbExpire, VerbTTL:
		return true
	}
	return false
}

// WithRandomKey returns a copy whose key is replaced with
// "<prefix>:<n>" for a fresh n in [0, keyRange). Commands without a key
// field come back unchanged. keyRange must be positive.
func (c Command) WithRandomKey(prefix string, keyRange int64) Command {
	if !c.HasKey() {
		return c
	}
	out := c
	out.Key = fmt.Sprintf("%s:%d", prefix, rand.Int63n(keyRange))
	return out
}

// DisplayName returns a short label for progress and report lines.
func (c Command) DisplayName() string {
	return string(c.Verb)
}
