package textclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n\n  ", ""},
		{"inner runs collapse", "Kerugian    Inventaris\t\t2024", "Kerugian Inventaris 2024"},
		{"lines are joined", "Kerugian Inventaris\nTotal 2024", "Kerugian Inventaris Total 2024"},
		{"lines are trimmed", "  satu  \n   dua", "satu dua"},
		{"blank lines are dropped", "satu\n\n\n\ndua\n \t \ntiga", "satu dua tiga"},
		{"windows line endings", "satu\r\n\r\ndua\r\n", "satu dua"},
		{"old mac line endings", "satu\rdua", "satu dua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PostProcess(tt.in))
		})
	}
}

func TestPostProcessIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"LAPORAN   KEUANGAN\n\n\nTotal :  Rp 1.500.000\r\n  Tanggal 17/08/2024  ",
		"\t\ta  b \n\n c",
		"satu dua tiga",
	}
	for _, in := range inputs {
		once := PostProcess(in)
		assert.Equal(t, once, PostProcess(once), "input %q", in)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount(" \n\t"))
	assert.Equal(t, 3, WordCount("Kerugian  Inventaris\n2024"))
	assert.Equal(t, WordCount("a  b\n\nc"), WordCount(PostProcess("a  b\n\nc")))
}
