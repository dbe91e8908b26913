package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestForWithoutLoggerUsesBase(t *testing.T) {
	e := For(context.Background())
	assert.Equal(t, base, e.Logger)
	//nolint:staticcheck
	assert.Equal(t, base, For(nil).Logger)
}

func TestNewContextWithFieldsCarriesFields(t *testing.T) {
	ctx := NewContextWithFields(context.Background(), logrus.Fields{"campaign": uint64(3)})
	ctx = NewContextWithFields(ctx, logrus.Fields{"amount": "100"})

	e := For(ctx)
	assert.Equal(t, uint64(3), e.Data["campaign"])
	assert.Equal(t, "100", e.Data["amount"])
}

func TestConfigureLevelAndOutput(t *testing.T) {
	prevOut, prevLevel := base.Out, base.GetLevel()
	t.Cleanup(func() {
		base.SetOutput(prevOut)
		base.SetLevel(prevLevel)
	})

	var buf bytes.Buffer
	Configure("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, base.GetLevel())

	For(context.Background()).Debug("refreshing campaigns")
	assert.Contains(t, buf.String(), "refreshing campaigns")

	Configure("not-a-level", nil)
	assert.Equal(t, logrus.DebugLevel, base.GetLevel())
}
