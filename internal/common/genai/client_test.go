package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpclient "pos-onboarding-workers/internal/common/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateContent_TextAndImage(t *testing.T) {
	photo := tinyPNG(t)
	edited := base64.StdEncoding.EncodeToString([]byte("edited-bytes"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "replace the terminal", gjson.GetBytes(body, "contents.0.parts.0.text").String())
		assert.Equal(t, "image/png", gjson.GetBytes(body, "contents.0.parts.1.inlineData.mimeType").String())
		assert.Equal(t, base64.StdEncoding.EncodeToString(photo), gjson.GetBytes(body, "contents.0.parts.1.inlineData.data").String())
		assert.Equal(t, `["TEXT","IMAGE"]`, gjson.GetBytes(body, "generationConfig.responseModalities").Raw)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[
			{"text":"Here is the counter with the new terminal."},
			{"inlineData":{"mimeType":"image/png","data":"` + edited + `"}}
		]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", httpclient.NewClient(time.Second), nil)
	resp, err := c.GenerateContent(context.Background(), "gemini-2.0-flash-exp",
		[]Part{TextPart("replace the terminal"), ImagePart(photo, "image/png")},
		ModalityText, ModalityImage)
	require.NoError(t, err)

	assert.Equal(t, "Here is the counter with the new terminal.", resp.Text())
	img, ok := resp.FirstImage()
	require.True(t, ok)
	assert.Equal(t, []byte("edited-bytes"), img.Data)
	assert.Equal(t, "image/png", img.MimeType)
}

func TestGenerateContent_TextOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.False(t, gjson.GetBytes(body, "generationConfig").Exists())
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A Verifone VX520."}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", httpclient.NewClient(time.Second), nil)
	resp, err := c.GenerateContent(context.Background(), "gemini-2.0-flash", []Part{TextPart("identify")})
	require.NoError(t, err)

	assert.Equal(t, "A Verifone VX520.", resp.Text())
	_, ok := resp.FirstImage()
	assert.False(t, ok)
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", httpclient.NewClient(time.Second), nil)
	resp, err := c.GenerateContent(context.Background(), "gemini-2.0-flash", []Part{TextPart("identify")})
	require.NoError(t, err)
	assert.Empty(t, resp.Parts)
	assert.Empty(t, resp.Text())
}

func TestCheckImage(t *testing.T) {
	format, err := CheckImage(tinyPNG(t))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	_, err = CheckImage([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = CheckImage(nil)
	assert.Error(t, err)
}
