package user_test

import (
	"os"
	"testing"

	"github.com/Black-And-White-Club/tcr-bot/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.Terminate()
	os.Exit(code)
}
