package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, tty bool, pw string, err error) {
	t.Helper()
	oldRead, oldTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldTTY })
	isTerminal = func() bool { return tty }
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", "", &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", "", &out)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", "", &out)
	require.Error(t, err)
}

func TestGetSimpleText_Default(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("\n"), "Server", "127.0.0.1", &out)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", got)
	require.Contains(t, out.String(), "Server [127.0.0.1]")

	got, err = GetSimpleText(rdr(""), "Server", "127.0.0.1", &out)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", got)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)
}

func TestGetMultiline_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("only line"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "only line", got)
}

func TestGetSecret_Terminal(t *testing.T) {
	stubTerminal(t, true, "pw", nil)
	var out bytes.Buffer
	got, err := GetSecret(rdr("ignored\n"), "Secret", &out)
	require.NoError(t, err)
	require.Equal(t, "pw", string(got))
}

func TestGetSecret_TerminalError(t *testing.T) {
	stubTerminal(t, true, "", errors.New("boom"))
	var out bytes.Buffer
	_, err := GetSecret(rdr(""), "Secret", &out)
	require.Error(t, err)
}

func TestGetSecret_Pipe(t *testing.T) {
	stubTerminal(t, false, "", nil)
	var out bytes.Buffer
	got, err := GetSecret(rdr("piped secret\r\n"), "Secret", &out)
	require.NoError(t, err)
	require.Equal(t, "piped secret", string(got))
}
