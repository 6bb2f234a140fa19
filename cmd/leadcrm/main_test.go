package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordCommand(t *testing.T) {
	for name, setup := range map[string]func(cmd []string) ([]string, string){
		"arg":   func(cmd []string) ([]string, string) { return append(cmd, "s3cret"), "" },
		"stdin": func(cmd []string) ([]string, string) { return cmd, "s3cret\n" },
	} {
		t.Run(name, func(t *testing.T) {
			args, stdin := setup([]string{"hash-password"})
			root := newRootCmd()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetIn(strings.NewReader(stdin))
			root.SetArgs(args)

			require.NoError(t, root.Execute())
			hash := strings.TrimSpace(out.String())
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
		})
	}
}

func TestMigrateRejectsNonSQLDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "x")
	root := newRootCmd()
	root.SetArgs([]string{"migrate"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQL store driver")
}
