//nolint:testpackage // Tests need access to internal types
package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAction_IsTerminal(t *testing.T) {
	terminal := map[Action]bool{
		ActionRun:               false,
		ActionPass:              true,
		ActionFail:              true,
		ActionSkip:              true,
		ActionError:             true,
		ActionExpectedFailure:   true,
		ActionUnexpectedSuccess: true,
		ActionOutput:            false,
		ActionSetup:             false,
	}

	for action, want := range terminal {
		assert.Equal(t, want, action.IsTerminal(), "%q.IsTerminal()", action)
	}
}

func TestEvent_PathString(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"GetUser"}, "GetUser"},
		{[]string{"GetUser", "group", "test"}, "GetUser.group.test"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, (Event{Path: tt.path}).PathString(), "PathString(%v)", tt.path)
	}
}

func TestEvent_TestName(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"GetUser"}, "GetUser"},
		{[]string{"GetUser", "group", "test"}, "test"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, (Event{Path: tt.path}).TestName(), "TestName(%v)", tt.path)
	}
}
