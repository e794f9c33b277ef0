package populate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoyforge/internal/token"
)

func validProfile() *Profile {
	return &Profile{
		Name: "test",
		Files: []Entry{
			{Path: "opt/app/sync.py", ContentType: "source-code", FileType: "python", Class: "source"},
			{Path: "opt/app/sync.log", ContentType: "log", FileType: "application-log", Class: "log", After: "opt/app/sync.py"},
			{Path: ".aws/credentials", ContentType: "honeytoken", TokenType: token.TypeAccessKey, Class: "credentials"},
		},
	}
}

func TestProfileValidateAccepts(t *testing.T) {
	require.NoError(t, validProfile().Validate())
}

func TestProfileValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
		want   string
	}{
		{"no name", func(p *Profile) { p.Name = "" }, "no name"},
		{"no files", func(p *Profile) { p.Files = nil }, "no files"},
		{"empty path", func(p *Profile) { p.Files[0].Path = "" }, "no path"},
		{"absolute path", func(p *Profile) { p.Files[0].Path = "/etc/passwd" }, "escapes"},
		{"parent traversal", func(p *Profile) { p.Files[0].Path = "../outside.py" }, "escapes"},
		{"duplicate path", func(p *Profile) { p.Files[1].Path = p.Files[0].Path }, "duplicate"},
		{"unknown content type", func(p *Profile) { p.Files[0].ContentType = "video" }, "unknown content_type"},
		{"honeytoken without type", func(p *Profile) { p.Files[2].TokenType = "" }, "token_type"},
		{"honeytoken bad type", func(p *Profile) { p.Files[2].TokenType = "coupon" }, "token_type"},
		{"after a later entry", func(p *Profile) { p.Files[0].After = "opt/app/sync.log" }, "not an earlier entry"},
		{"after itself", func(p *Profile) { p.Files[0].After = p.Files[0].Path }, "not an earlier entry"},
		{"after unknown", func(p *Profile) { p.Files[1].After = "missing.txt" }, "not an earlier entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuiltinProfilesAreValid(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	names := r.Names()
	require.NotEmpty(t, names)
	for _, name := range names {
		p, err := r.Get(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), "profile %s", name)
	}
}
