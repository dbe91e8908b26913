package contract

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a contract interface whose ABI is embedded in the
// binary. Each built-in registers itself via init() in its own
// internal/contract/<name>_abi.go file.
type BuiltinKind struct {
	ID          string // machine key, e.g. "erc20"
	Name        string // human label
	Description string
	JSON        string // ABI JSON as emitted by solc

	once   sync.Once
	parsed abi.ABI
	err    error
}

// ABI parses the built-in JSON once and returns the result.
func (b *BuiltinKind) ABI() (abi.ABI, error) {
	b.once.Do(func() {
		b.parsed, b.err = abi.JSON(strings.NewReader(b.JSON))
		if b.err != nil {
			b.err = fmt.Errorf("parsing %s ABI: %w", b.ID, b.err)
		}
	})
	return b.parsed, b.err
}

var builtinRegistry = map[string]*BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
func RegisterBuiltin(b *BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID.
func GetBuiltin(id string) (*BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// MustABI returns the parsed ABI of a built-in and panics if it is missing
// or malformed. Built-ins are compiled in, so failure is a programming error.
func MustABI(id string) abi.ABI {
	b, ok := builtinRegistry[id]
	if !ok {
		panic(fmt.Sprintf("contract: unknown builtin %q", id))
	}
	parsed, err := b.ABI()
	if err != nil {
		panic(err)
	}
	return parsed
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []*BuiltinKind {
	out := make([]*BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
