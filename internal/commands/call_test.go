package commands_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtodo/internal/commands"
	"vtodo/internal/exitcode"
	"vtodo/internal/rpc"
	"vtodo/internal/service"
	"vtodo/internal/store"
	"vtodo/internal/transport"
	"vtodo/internal/transport/httprpc"
)

func TestCallCommand_Local(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdout string
		code   int
	}{
		{
			name:   "add",
			args:   []string{"addTodo", `{"task":"milk"}`},
			stdout: "\n",
			code:   exitcode.Success,
		},
		{
			name:   "get",
			args:   []string{"getTodos"},
			stdout: `[{"text":"seeded","done":false}]` + "\n",
			code:   exitcode.Success,
		},
		{
			name:   "switch missing",
			args:   []string{"switchList", `{"listName":"Nope"}`},
			stdout: `{"success":false,"error":"List not found","code":"not_found"}` + "\n",
			code:   exitcode.UserError,
		},
		{
			name:   "delete default",
			args:   []string{"deleteList", `{"listName":"Personal"}`},
			stdout: `{"success":false,"error":"Cannot delete Personal list","code":"protected"}` + "\n",
			code:   exitcode.UserError,
		},
		{
			name:   "payload split across args",
			args:   []string{"createList", `{"listName":`, `"Work"}`},
			stdout: `{"success":true,"listName":"Work","created":true}` + "\n",
			code:   exitcode.Success,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			seed(t, s, "", "seeded")
			cmd := &commands.CallCmd{}
			cmd.SetLocal(true)

			stdout, stderr, code := runCommand(t, cmd, s, tt.args, false)

			assert.Equal(t, tt.code, code)
			assert.Empty(t, stderr)
			assert.Equal(t, tt.stdout, stdout)
		})
	}
}

func TestCallCommand_LocalErrors(t *testing.T) {
	cmd := &commands.CallCmd{}
	cmd.SetLocal(true)

	_, stderr, code := runCommand(t, cmd, newStore(t), nil, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: procedure required\n", stderr)

	_, stderr, code = runCommand(t, cmd, newStore(t), []string{"launchRocket"}, false)
	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unknown procedure: launchRocket\n", stderr)
}

func newRPCServer(t *testing.T, svc service.Service, tokens ...string) *httptest.Server {
	t.Helper()
	reg := transport.NewRegistry()
	require.NoError(t, rpc.New(svc).Register(reg))
	srv := httptest.NewServer(httprpc.NewServer(reg, httprpc.Config{Tokens: tokens}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestCallCommand_Remote(t *testing.T) {
	remote := store.New(t.Context(), nil)
	srv := newRPCServer(t, remote, "secret")

	cmd := &commands.CallCmd{}
	cmd.SetURL(srv.URL)
	cmd.SetToken("secret")

	stdout, stderr, code := runCommand(t, cmd, nil, []string{"addTodo", `{"task":"from afar"}`}, false)
	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "\n", stdout)
	assert.Equal(t, []service.Item{{Text: "from afar"}}, remote.ListItems(""))

	stdout, _, code = runCommand(t, cmd, nil, []string{"getListNames"}, false)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, `{"lists":["Personal"],"current":"Personal"}`+"\n", stdout)
}

func TestCallCommand_RemoteErrors(t *testing.T) {
	srv := newRPCServer(t, newStore(t), "secret")

	tests := []struct {
		name   string
		url    string
		token  string
		args   []string
		code   int
		stderr string
	}{
		{"bad token", srv.URL, "wrong", []string{"getTodos"}, exitcode.AuthError, "error: auth error: server rejected token\n"},
		{"unknown procedure", srv.URL, "secret", []string{"nope"}, exitcode.UserError, "error: unknown procedure: nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &commands.CallCmd{}
			cmd.SetURL(tt.url)
			cmd.SetToken(tt.token)

			stdout, stderr, code := runCommand(t, cmd, nil, tt.args, false)

			assert.Equal(t, tt.code, code)
			assert.Empty(t, stdout)
			assert.Equal(t, tt.stderr, stderr)
		})
	}
}

func TestCallCommand_ServerDown(t *testing.T) {
	srv := newRPCServer(t, newStore(t))
	url := srv.URL
	srv.Close()

	cmd := &commands.CallCmd{}
	cmd.SetURL(url)

	_, stderr, code := runCommand(t, cmd, nil, []string{"getTodos"}, false)

	assert.Equal(t, exitcode.TransportError, code)
	assert.Contains(t, stderr, "error: transport error:")
}
