package correction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "\n  ```json {\"a\":1} ```  \n", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestParseReply(t *testing.T) {
	raw := "```json\n" + `{
		"corrected_text": "Kerugian Inventaris",
		"corrections": [
			{"original": "Kerngi an", "corrected": "Kerugian", "reason": "huruf salah dan spasi berlebih"},
			{"original": "lnventaris", "corrected": "Inventaris", "reason": "l terbaca sebagai I"}
		],
		"confidence": 9
	}` + "\n```"

	result, err := ParseReply(raw, "Kerngi an lnventaris")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Kerugian Inventaris", result.CorrectedText)
	assert.Equal(t, 9.0, result.Confidence)
	require.Len(t, result.Corrections, 2)
	assert.Equal(t, Correction{Original: "lnventaris", Corrected: "Inventaris", Reason: "l terbaca sebagai I"}, result.Corrections[1])
}

func TestParseReply_Defaults(t *testing.T) {
	result, err := ParseReply(`{}`, "teks asli")
	require.NoError(t, err)
	assert.Equal(t, "teks asli", result.CorrectedText)
	assert.Equal(t, DefaultConfidence, result.Confidence)
	assert.NotNil(t, result.Corrections)
	assert.Empty(t, result.Corrections)
}

func TestParseReply_ExplicitEmptyCorrectedText(t *testing.T) {
	result, err := ParseReply(`{"corrected_text": "", "confidence": 3}`, "teks asli")
	require.NoError(t, err)
	assert.Equal(t, "", result.CorrectedText)
}

func TestParseReply_Confidence(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`{"confidence": 7}`, 7},
		{`{"confidence": 7.5}`, 7.5},
		{`{"confidence": "8"}`, 8},
		{`{"confidence": " 6 "}`, 6},
		{`{"confidence": "tinggi"}`, DefaultConfidence},
		{`{"confidence": null}`, DefaultConfidence},
		{`{"confidence": 42}`, MaxConfidence},
		{`{"confidence": -3}`, MinConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			result, err := ParseReply(tt.raw, "x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Confidence)
		})
	}
}

func TestParseReply_Errors(t *testing.T) {
	_, err := ParseReply("   ", "x")
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = ParseReply("Berikut hasil koreksinya: Kerugian Inventaris", "x")
	assert.ErrorIs(t, err, ErrMalformedReply)

	_, err = ParseReply(`{"corrected_text": 12}`, "x")
	assert.ErrorIs(t, err, ErrMalformedReply)

	var corrErr *Error
	require.ErrorAs(t, err, &corrErr)
	assert.Equal(t, "ParseReply", corrErr.Op)
}

func TestParseReply_NotAnObject(t *testing.T) {
	for _, raw := range []string{"null", "[]", `"Kerugian Inventaris"`, "9", "```json\nnull\n```"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseReply(raw, "teks asli")
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	text := "Baris satu\nTanggal 17/08/1945 Rp 1.500.000"
	prompt := BuildPrompt(text)
	assert.Contains(t, prompt, text)
	assert.Contains(t, prompt, `"corrected_text"`)
	assert.Contains(t, prompt, `"corrections"`)
	assert.Contains(t, prompt, `"confidence"`)
	assert.Contains(t, prompt, "CONTOH KOREKSI UMUM:\n- \"Kerngi an\" → \"Kerugian\"\n")
	assert.Contains(t, prompt, `"Harga: Rp 1.000.OOO" → "Harga: Rp 1.000.000"`)
	assert.Less(t, strings.Index(prompt, "INSTRUKSI KOREKSI"), strings.Index(prompt, "CONTOH KOREKSI UMUM"))
	assert.Less(t, strings.Index(prompt, "CONTOH KOREKSI UMUM"), strings.Index(prompt, "RESPONSE FORMAT"))
}

func TestFallback(t *testing.T) {
	result := Fallback("teks")
	assert.False(t, result.Success)
	assert.Equal(t, "teks", result.CorrectedText)
	assert.Empty(t, result.Corrections)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, "Original Text (API Failed)", result.Method)
}
