package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattersContainMessage(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Hint":      Hint,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestPrefixes(t *testing.T) {
	assert.Contains(t, Success("x"), "✓")
	assert.Contains(t, Warn("x"), "⚠")
	assert.Contains(t, Err("x"), "✗")
	assert.Contains(t, Info("x"), "ℹ")
	assert.NotEqual(t, Info("m"), Hint("m"))
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234567890abcdef1234567890abcdef12345678"))
}

// ---------------------------------------------------------------------------
// padR / trimErr
// ---------------------------------------------------------------------------

func TestPadR(t *testing.T) {
	assert.Equal(t, "hi        ", padR("hi", 10))
	assert.Equal(t, "hello", padR("hello", 5))
	assert.Equal(t, "toolongstring", padR("toolongstring", 5))
	assert.Equal(t, "    ", padR("", 4))
	assert.Equal(t, "x", padR("x", 0))
}

func TestPadRMeasuresVisibleWidth(t *testing.T) {
	s := padR("…", 3)
	assert.Equal(t, "…  ", s)
}

func TestTrimErr(t *testing.T) {
	assert.Equal(t, "short error", trimErr("short error"))
	assert.Equal(t, "a b", trimErr("a\nb"))

	long := strings.Repeat("x", 200)
	out := trimErr(long)
	assert.Equal(t, 72, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestBanner(t *testing.T) {
	assert.Contains(t, Banner(), "crowdfunding")
}
