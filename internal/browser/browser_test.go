package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/story", false},
		{"http://example.com", false},
		{"javascript:alert(1)", true},
		{"file:///etc/passwd", true},
		{"https://", true},
		{"://bad", true},
	}
	for _, tt := range tests {
		err := Validate(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
		} else {
			assert.NoError(t, err, tt.url)
		}
	}
}

func TestOpenRejectsScheme(t *testing.T) {
	assert.Error(t, Open("ftp://example.com/file"))
}

func TestCommand(t *testing.T) {
	name, args := Command("darwin", "https://a.example")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"https://a.example"}, args)

	name, args = Command("windows", "https://a.example")
	assert.Equal(t, "rundll32", name)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler", "https://a.example"}, args)

	name, _ = Command("linux", "https://a.example")
	assert.Equal(t, "xdg-open", name)
}
