package llm

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ name string }

func (s stubEngine) Name() string     { return s.name }
func (s stubEngine) GetModel() string { return "m" }
func (s stubEngine) Transcribe(context.Context, io.Reader, string, string) (string, error) {
	return "", nil
}
func (s stubEngine) ReadImage(context.Context, []byte, string, string) (string, error) {
	return "", nil
}
func (s stubEngine) Synthesize(context.Context, string, string, float32) (string, error) {
	return "", nil
}

func TestGetEngine(t *testing.T) {
	engs := &Engines{OpenAI: stubEngine{"gpt"}}

	e, err := engs.GetEngine("OpenAI")
	require.NoError(t, err)
	assert.Equal(t, "gpt", e.Name())

	_, err = engs.GetEngine("gemini")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = engs.GetEngine("deepseek")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = engs.GetEngine("yandex")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestGetReader(t *testing.T) {
	engs := &Engines{Gemini: stubEngine{"gemini"}}

	_, err := engs.GetReader("yandex")
	assert.ErrorIs(t, err, ErrNotConfigured)

	engs.Yandex = stubEngine{"yandex"}
	r, err := engs.GetReader("Yandex")
	require.NoError(t, err)
	assert.Equal(t, "yandex", r.(stubEngine).name)

	r, err = engs.GetReader("gemini")
	require.NoError(t, err)
	assert.Equal(t, "gemini", r.(stubEngine).name)
}
