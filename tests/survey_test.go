package tests_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/diapason/tests/testutils"
)

func TestSurvey(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "survey reports every recording of a folder",
			Setup: func(data test.Data, helpers test.Helpers) {
				folder := data.Temp().Path("strings")
				if err := os.MkdirAll(folder, 0o755); err != nil {
					helpers.T().Log(err.Error())
					helpers.T().Fail()
				}

				writeToneAt(helpers, filepath.Join(folder, "1-e4.wav"), 329.63)
				writeToneAt(helpers, filepath.Join(folder, "5-a2.wav"), 115)
				writeToneAt(helpers, filepath.Join(folder, "6-e2.wav"), 80)
				data.Labels().Set("folder", folder)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("survey", "--workers", "2", data.Labels().Get("folder"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains(`"pitch":"E4"`),
						expectContains(`"verdict":"too high"`),
						expectContains(`"verdict":"too low"`),
						expectContains(`"windows":3`),
					),
				}
			},
		},
	}

	testCase.Run(t)
}
