package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const realisticPython = `import json
import logging
import os

from flask import Flask, jsonify

app = Flask(__name__)
logger = logging.getLogger("billing")

# invoice endpoints are read-only until the payment worker lands


def load_config(path):
    with open(path) as fh:
        return json.load(fh)


@app.route("/api/v1/invoices")
def list_invoices():
    try:
        cfg = load_config(os.environ["BILLING_CONFIG"])
    except KeyError:
        logger.error("BILLING_CONFIG not set")
        return jsonify({"error": "misconfigured"}), 500
    return jsonify({"invoices": [], "currency": cfg.get("currency", "USD")})


if __name__ == "__main__":
    app.run(port=8080)
`

func TestRealismEmptyContentHardFails(t *testing.T) {
	res := Realism("   \n\t", Meta{FileType: "python"})
	assert.False(t, res.Passed)
	assert.Equal(t, 0.0, res.Score)
}

func TestRealismPlausibleSource(t *testing.T) {
	res := Realism(realisticPython, Meta{ContentType: "source-code", FileType: "python"})
	assert.True(t, res.Passed)
	assert.GreaterOrEqual(t, res.Score, 0.7)
}

func TestRealismRepetitiveContentScoresLow(t *testing.T) {
	repetitive := strings.Repeat("aaaa aaaa aaaa\n", 40)
	res := Realism(repetitive, Meta{FileType: "generic"})
	assert.True(t, res.Passed) // soft signal, never a hard fail
	good := Realism(realisticPython, Meta{FileType: "python"})
	assert.Less(t, res.Score, good.Score)
}

func TestRealismPlaceholdersPenalized(t *testing.T) {
	base := realisticPython
	stuffed := base + "\n# TODO fixme placeholder change_me your_key_here test123\n"
	clean := Realism(base, Meta{FileType: "python"})
	dirty := Realism(stuffed, Meta{FileType: "python"})
	assert.Less(t, dirty.Score, clean.Score)
}

func TestRealismScoreBounds(t *testing.T) {
	for _, content := range []string{"x", realisticPython, strings.Repeat("z", 5000)} {
		res := Realism(content, Meta{FileType: "generic"})
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 1.0)
	}
}

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, shannonEntropy(""))
	assert.Equal(t, 0.0, shannonEntropy("aaaa"))
	assert.InDelta(t, 1.0, shannonEntropy("abab"), 1e-9)
}
