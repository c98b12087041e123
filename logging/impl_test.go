package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type sliceResult struct {
	Slice  int
	Status uint32
	note   string
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

// assertLogMatches compares one line of console output, ignoring the timestamp value and the
// caller's line number.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))

	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFile, actualLine, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFile, _, _ := strings.Cut(expectedParts[3], ":")
	test.That(t, actualFile, test.ShouldEqual, expectedFile)
	_, err = strconv.Atoi(actualLine)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := map[string]any{}
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := map[string]any{}
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, out := newBufferLogger("ddr", DEBUG)

	logger.Info("controller started")
	assertLogMatches(t, out,
		"2023-10-30T13:19:45.806Z\tINFO\tddr\tlogging/impl_test.go:1\tcontroller started")

	logger.Debugf("poll %d of %d", 3, 100)
	assertLogMatches(t, out,
		"2023-10-30T13:19:45.806Z\tDEBUG\tddr\tlogging/impl_test.go:1\tpoll 3 of 100")

	logger.Warnw("leveling failed", "check", "gate", "result", sliceResult{Slice: 1, Status: 0xC0, note: "x"})
	assertLogMatches(t, out,
		`2023-10-30T13:19:45.806Z	WARN	ddr	logging/impl_test.go:1	leveling failed	{"check":"gate","result":{"Slice":1,"Status":192}}`)

	logger.Errorw("dangling", "key")
	assertLogMatches(t, out,
		`2023-10-30T13:19:45.806Z	ERROR	ddr	logging/impl_test.go:1	dangling	{"key":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, out := newBufferLogger("qspi", WARN)

	logger.Debug("hidden")
	logger.Info("hidden")
	test.That(t, out.Len(), test.ShouldEqual, 0)

	logger.Warn("shown")
	test.That(t, out.String(), test.ShouldContainSubstring, "shown")

	out.Reset()
	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
	logger.Warnf("hidden %d", 1)
	test.That(t, out.Len(), test.ShouldEqual, 0)

	SetGlobalLevel(DEBUG)
	defer SetGlobalLevel(INFO)
	logger.Debug("forced")
	test.That(t, out.String(), test.ShouldContainSubstring, "forced")
}

func TestSublogger(t *testing.T) {
	logger, out := newBufferLogger("ddr", INFO)
	sub := logger.Sublogger("phy")
	sub.Info("pll locked")
	test.That(t, out.String(), test.ShouldContainSubstring, "\tddr.phy\t")

	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("mode register read", "mr", 5, "value", 0xFF)
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.Level, test.ShouldEqual, zapcore.InfoLevel)
	test.That(t, entry.ContextMap()["mr"], test.ShouldEqual, int64(5))
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in  string
		out Level
	}{
		{"debug", DEBUG}, {"INFO", INFO}, {"warning", WARN}, {"Error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.out)
	}
	_, err := LevelFromString("trace")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
}
