package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func promptCommand(input string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	return cmd, out
}

func TestConfirmAcceptsYes(t *testing.T) {
	for _, answer := range []string{"y\n", "Y\n", "yes\n", " YES \n"} {
		cmd, out := promptCommand(answer)
		assert.True(t, confirm(cmd, false, "Move sample 10 to trash?"), "answer %q", answer)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestConfirmDeclinesByDefault(t *testing.T) {
	for _, answer := range []string{"\n", "n\n", "no\n", "absolutely\n", ""} {
		cmd, _ := promptCommand(answer)
		assert.False(t, confirm(cmd, false, "Move sample 10 to trash?"), "answer %q", answer)
	}
}

func TestConfirmSkipsPromptWithYesFlag(t *testing.T) {
	cmd, out := promptCommand("")
	assert.True(t, confirm(cmd, true, "Move sample 10 to trash?"))
	assert.Empty(t, out.String())
}
