package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntaxPython(t *testing.T) {
	valid := `import os

def main():
    print(os.getcwd())

if __name__ == "__main__":
    main()
`
	res := Syntax(valid, Meta{FileType: "python"})
	assert.True(t, res.Passed)
	assert.Equal(t, 1.0, res.Score)

	invalid := "def broken(:\n    pass\n"
	res = Syntax(invalid, Meta{FileType: "python"})
	assert.False(t, res.Passed)
	assert.Equal(t, 0.0, res.Score)
	assert.NotEmpty(t, res.Violations)
}

func TestSyntaxJavaScript(t *testing.T) {
	valid := `const express = require('express');
const app = express();

app.get('/health', (req, res) => {
  res.json({ status: 'ok' });
});

app.listen(3000);
`
	res := Syntax(valid, Meta{FileType: "javascript"})
	assert.True(t, res.Passed)

	res = Syntax("function broken( {", Meta{FileType: "javascript"})
	assert.False(t, res.Passed)
}

func TestSyntaxShell(t *testing.T) {
	valid := `#!/bin/bash
set -euo pipefail

BACKUP_DIR="/var/backups"
if [ ! -d "$BACKUP_DIR" ]; then
  mkdir -p "$BACKUP_DIR"
fi
echo "done"
`
	res := Syntax(valid, Meta{FileType: "shell"})
	assert.True(t, res.Passed)
}

func TestSyntaxYAML(t *testing.T) {
	res := Syntax("services:\n  web:\n    image: nginx:1.25\n", Meta{FileType: "yaml"})
	assert.True(t, res.Passed)

	res = Syntax("services:\n  web:\n   - image: [unclosed\n", Meta{FileType: "yaml"})
	assert.False(t, res.Passed)
}

func TestSyntaxJSON(t *testing.T) {
	res := Syntax(`{"name": "api", "port": 8080}`, Meta{FileType: "json"})
	assert.True(t, res.Passed)

	res = Syntax(`{"name": }`, Meta{FileType: "json"})
	assert.False(t, res.Passed)
}

func TestSyntaxNginx(t *testing.T) {
	valid := `server {
    listen 80;
    server_name app.internal;
    location / {
        proxy_pass http://127.0.0.1:8080;
    }
}
`
	res := Syntax(valid, Meta{FileType: "nginx"})
	assert.True(t, res.Passed)

	res = Syntax("server {\n  listen 80;\n", Meta{FileType: "nginx"})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Violations[0], "unbalanced")
}

func TestSyntaxGeneric(t *testing.T) {
	res := Syntax("Jan 12 03:14:07 web-01 sshd[812]: Accepted publickey for deploy\n", Meta{FileType: "generic"})
	assert.True(t, res.Passed)

	res = Syntax("", Meta{FileType: "generic"})
	assert.False(t, res.Passed)

	res = Syntax("binary\x00garbage", Meta{FileType: "generic"})
	assert.False(t, res.Passed)
}
