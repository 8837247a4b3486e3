package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeDataURIRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	uri := MakeDataURI("image/png", payload)
	assert.Equal(t, "data:image/png;base64,AQIDBA==", uri)

	data, mime, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", mime)
}

func TestDecodeDataURIBareBase64(t *testing.T) {
	data, mime, err := DecodeDataURI("AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, data)
	assert.Empty(t, mime)
}

func TestDecodeDataURIInvalid(t *testing.T) {
	_, _, err := DecodeDataURI("data:image/png;base64,@@not-base64@@")
	assert.Error(t, err)
}

func TestPickMIME(t *testing.T) {
	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	// 显式 > data:URI 前缀 > 字节探测
	assert.Equal(t, "image/webp", PickMIME("image/webp", "image/png", pngHeader))
	assert.Equal(t, "image/png", PickMIME("", "image/png", nil))
	assert.Equal(t, "image/png", PickMIME("", "", pngHeader))
	assert.Equal(t, "image/jpeg", PickMIME("", "", nil))
}
