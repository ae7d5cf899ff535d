package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/commands"
	"vtodo/internal/config"
	"vtodo/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// writeConfigFiles writes name -> content into a fresh config dir.
func writeConfigFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func runInDir(ctx context.Context, cmd commands.Command, dir string, quiet bool) (stdout, stderr string, code int) {
	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{Dir: dir, Quiet: quiet}
	code = cmd.Run(ctx, cfg, nil, nil, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	stdout, stderr, code := runInDir(context.Background(), &commands.LoginCmd{}, t.TempDir(), false)

	assert.Equal(t, exitcode.AuthError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "oauth_client.json not found")
	assert.Contains(t, stderr, "vtodo login")
}

func TestLoginCommand_RetriesUnusableToken(t *testing.T) {
	tokens := map[string]string{
		"no refresh token": `{"access_token":"expired","token_type":"Bearer"}`,
		"expired":          `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`,
		"corrupt":          `{not json`,
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			dir := writeConfigFiles(t, map[string]string{
				config.OAuthClientFile: testOAuthClient,
				config.TokenFile:       token,
			})

			// A cancelled context stops the flow before it waits for a browser.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			stdout, _, code := runInDir(ctx, &commands.LoginCmd{}, dir, false)

			assert.NotEqual(t, "already logged in\n", stdout)
			assert.NotEqual(t, exitcode.Success, code)
		})
	}
}

func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	dir := writeConfigFiles(t, map[string]string{
		config.OAuthClientFile: testOAuthClient,
		config.TokenFile:       `{"access_token":"test","refresh_token":"test"}`,
	})

	stdout, stderr, code := runInDir(context.Background(), &commands.LogoutCmd{}, dir, false)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "ok\n", stdout)
	assert.NoFileExists(t, filepath.Join(dir, config.TokenFile))
	assert.FileExists(t, filepath.Join(dir, config.OAuthClientFile))
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		stdout, stderr, code := runInDir(context.Background(), &commands.LogoutCmd{}, t.TempDir(), quiet)

		assert.Equal(t, exitcode.Success, code)
		assert.Empty(t, stderr)
		if quiet {
			assert.Empty(t, stdout)
		} else {
			assert.Equal(t, "not logged in\n", stdout)
		}
	}
}
