package trafilatura_test

import (
	"testing"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/">Home</a><a href="/docs">Docs</a></nav>
<article>
<h1>Replication</h1>
<p>Streaming replication allows a standby server to stay more up-to-date than is possible with file-based log shipping.</p>
<pre><code>primary_conninfo = 'host=192.168.1.50 port=5432'</code></pre>
</article>
<aside>Sidebar content</aside>
<footer>Copyright 2024</footer>
</body>
</html>`

		content, err := trafilatura.NewExtractor().Extract(html, "https://www.postgresql.org/docs/16/warm-standby.html")

		require.NoError(t, err)
		assert.Contains(t, content, "Streaming replication allows a standby server")
		assert.Contains(t, content, "primary_conninfo")
	})

	t.Run("removes navigation boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
</ul>
</nav>
<main>
<h1>Vacuum</h1>
<p>VACUUM reclaims storage occupied by dead tuples. In normal operation, tuples that are deleted or obsoleted by an update are not physically removed from their table.</p>
</main>
</body>
</html>`

		content, err := trafilatura.NewExtractor().Extract(html, "")

		require.NoError(t, err)
		assert.Contains(t, content, "VACUUM reclaims storage")
		assert.NotContains(t, content, "main-nav")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("  ", "")

		assert.Equal(t, dbdocs.EINVALID, dbdocs.ErrorCode(err))
	})

	t.Run("rejects invalid page URL", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("<p>x</p>", "http://[::1")

		assert.Equal(t, dbdocs.EINVALID, dbdocs.ErrorCode(err))
	})
}
