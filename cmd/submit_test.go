package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"registro/registration"

	"github.com/stretchr/testify/require"
)

func TestBuildForm(t *testing.T) {
	form, err := buildForm([]string{"username", "email"}, []string{"username=ana", "extra=a=b", "email="})
	require.NoError(t, err)
	require.Equal(t, []registration.Field{
		{Name: "username", Value: "ana"},
		{Name: "email", Value: ""},
		{Name: "extra", Value: "a=b"},
	}, form.Fields())
}

func TestBuildFormErrors(t *testing.T) {
	cases := []struct {
		name string
		pair string
	}{
		{name: "no_separator", pair: "username"},
		{name: "empty_key", pair: "=ana"},
	}

	for _, tCase := range cases {
		t.Run(tCase.name, func(t *testing.T) {
			_, err := buildForm([]string{"username"}, []string{tCase.pair})
			require.Error(t, err)
		})
	}
}

// runRoot executes the root command with args and returns its stdout.
// Flag values live in package variables, so array flags are cleared first.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	submitFields = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSubmitCommand(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"email": ["El correo electrónico ya está en uso."]}`)
	}))
	defer srv.Close()

	out, err := runRoot(t, "submit", "--endpoint", srv.URL, "-f", "username=ana", "-f", "email=ana@example.com")
	require.ErrorIs(t, err, errRejected)
	require.Equal(t, "❌ Error: El correo electrónico ya está en uso.\n", out)
	require.JSONEq(t, `{
		"username": "ana",
		"email": "ana@example.com",
		"password": "",
		"ruc": "",
		"direccion": "",
		"telefono": ""
	}`, string(body))
}

func TestSubmitCommandSuccess(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message": "Registro exitoso"}`)
	}))
	defer srv.Close()

	out, err := runRoot(t, "submit", "--endpoint", srv.URL, "-f", "username=luis", "-f", "ruc=1790012345001")
	require.NoError(t, err)
	require.Equal(t, "✅ Registro exitoso\n", out)
	require.Contains(t, string(body), `"username":"luis"`)
	require.Contains(t, string(body), `"ruc":"1790012345001"`)
}
